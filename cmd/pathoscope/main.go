// cmd/pathoscope/main.go

// Pathoscope maps sample reads against a virus reference, subtracts
// host-derived alignments and reassigns ambiguous reads to diagnose
// which reference sequences are present in a sample.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
