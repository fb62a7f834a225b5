// internal/store/store.go

// Package store is the MongoDB access layer shared with the wider
// Virtool toolchain. Collection and field names match the documents the
// server writes.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"pathoscope/pkg/api"
)

// maxDocumentSize is the MongoDB BSON document limit. Results whose
// update document would exceed it are diverted to a file.
const maxDocumentSize = 16 * 1024 * 1024

// Sample is the subset of a sample document the pipeline reads.
type Sample struct {
	ID     string `bson:"_id"`
	Paired *bool  `bson:"paired"`
	Files  []any  `bson:"files"`

	Quality struct {
		Count int `bson:"count"`
	} `bson:"quality"`

	Subtraction struct {
		ID string `bson:"id"`
	} `bson:"subtraction"`
}

// IsPaired reports whether the sample has paired reads, falling back
// to the file count for documents predating the paired field.
func (s Sample) IsPaired() bool {
	if s.Paired != nil {
		return *s.Paired
	}
	return len(s.Files) == 2
}

// Sequence is the subset of a sequence document the pipeline reads.
type Sequence struct {
	ID       string `bson:"_id"`
	OTUID    string `bson:"otu_id"`
	Sequence string `bson:"sequence"`
}

// Store wraps the MongoDB connection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.SugaredLogger
}

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, uri, name string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}

	log.Debugw("connected", "uri", uri, "db", name)

	return &Store{client: client, db: client.Database(name), log: log}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Sample fetches one sample document by ID.
func (s *Store) Sample(ctx context.Context, id string) (Sample, error) {
	var sample Sample
	err := s.db.Collection("samples").FindOne(ctx, bson.M{"_id": id}).Decode(&sample)
	if err != nil {
		return Sample{}, fmt.Errorf("sample %s: %w", id, err)
	}
	return sample, nil
}

// DistinctOTUIDs returns the OTU IDs owning any of the given sequence
// IDs.
func (s *Store) DistinctOTUIDs(ctx context.Context, sequenceIDs []string) ([]string, error) {
	raw, err := s.db.Collection("sequences").Distinct(ctx, "otu_id", bson.M{
		"_id": bson.M{"$in": sequenceIDs},
	})
	if err != nil {
		return nil, fmt.Errorf("distinct otu ids: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("distinct otu ids: non-string id %v", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SequencesByOTU streams every sequence belonging to the given OTUs to
// fn.
func (s *Store) SequencesByOTU(ctx context.Context, otuIDs []string, fn func(Sequence) error) error {
	cursor, err := s.db.Collection("sequences").Find(ctx, bson.M{
		"otu_id": bson.M{"$in": otuIDs},
	})
	if err != nil {
		return fmt.Errorf("sequences: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var seq Sequence
		if err := cursor.Decode(&seq); err != nil {
			return fmt.Errorf("sequences: %w", err)
		}
		if err := fn(seq); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// CommitResults writes the finished results to the analysis document.
// Results too large for a single document are written to fallbackPath
// instead and the document marked with diagnosis "file".
func (s *Store) CommitResults(ctx context.Context, analysisID string, results api.AnalysisResultsV1, fallbackPath string) error {
	update := bson.M{
		"ready":            true,
		"read_count":       results.ReadCount,
		"subtracted_count": results.SubtractedCount,
		"diagnosis":        results.Diagnosis,
	}

	tooLarge, err := exceedsSizeLimit(update)
	if err != nil {
		return fmt.Errorf("commit %s: %w", analysisID, err)
	}

	if tooLarge {
		if err := writeFallback(fallbackPath, results); err != nil {
			return fmt.Errorf("commit %s: %w", analysisID, err)
		}
		s.log.Infow("results diverted to file", "analysis", analysisID, "path", fallbackPath)
		update = bson.M{
			"ready":            true,
			"read_count":       results.ReadCount,
			"subtracted_count": results.SubtractedCount,
			"diagnosis":        "file",
		}
	}

	_, err = s.db.Collection("analyses").UpdateOne(ctx,
		bson.M{"_id": analysisID},
		bson.M{"$set": update},
	)
	if err != nil {
		return fmt.Errorf("commit %s: %w", analysisID, err)
	}
	return nil
}

// RemoveAnalysis deletes an analysis document, ignoring documents that
// never existed.
func (s *Store) RemoveAnalysis(ctx context.Context, analysisID string) error {
	_, err := s.db.Collection("analyses").DeleteOne(ctx, bson.M{"_id": analysisID})
	if err != nil {
		return fmt.Errorf("remove analysis %s: %w", analysisID, err)
	}
	return nil
}

func exceedsSizeLimit(update bson.M) (bool, error) {
	data, err := bson.Marshal(update)
	if err != nil {
		return false, err
	}
	return len(data) >= maxDocumentSize, nil
}

func writeFallback(path string, results api.AnalysisResultsV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
