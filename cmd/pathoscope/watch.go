// cmd/pathoscope/watch.go
package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"pathoscope/internal/task"
	"pathoscope/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <spool-dir>",
	Short: "Run analyses for task files dropped into a directory",
	Long: `Watch a spool directory and run an analysis for every JSON task
file that appears in it. Files already present at startup are processed
first. Processed files are renamed with a .done suffix, failed ones
with .failed.

Example:
  pathoscope watch /srv/pathoscope/spool`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log, err := newLogger(cmd)
		if err != nil {
			fail(err)
		}
		defer log.Sync()

		cfg, err := loadConfig(cmd)
		if err != nil {
			fail(err)
		}

		ctx := cmd.Context()

		analyzer, closeStore, err := newAnalyzer(ctx, cfg, log)
		if err != nil {
			fail(err)
		}
		defer closeStore()

		w := watch.New(args[0], func(ctx context.Context, path string) error {
			t, err := task.Load(path)
			if err != nil {
				return err
			}
			return analyzer.Job(t).Run(ctx)
		}, log)

		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
