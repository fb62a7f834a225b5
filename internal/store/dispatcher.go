// internal/store/dispatcher.go
package store

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher notifies interested parties of a document change. The
// Virtool server uses these messages to push websocket updates; the
// standalone pipeline only logs them.
type Dispatcher interface {
	Dispatch(ctx context.Context, collection, operation, id string) error
}

// LogDispatcher logs dispatch messages instead of delivering them.
type LogDispatcher struct {
	Log *zap.SugaredLogger
}

func (d LogDispatcher) Dispatch(_ context.Context, collection, operation, id string) error {
	log := d.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log.Infow("dispatch", "collection", collection, "operation", operation, "id", id)
	return nil
}
