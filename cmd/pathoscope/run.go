// cmd/pathoscope/run.go
package main

import (
	"github.com/spf13/cobra"

	"pathoscope/internal/task"
)

var runCmd = &cobra.Command{
	Use:   "run <task.json>",
	Short: "Run one analysis from a task file",
	Long: `Run one analysis described by a JSON task file.

The task file names the sample, the reference and its index build, and
carries the OTU version map the diagnosis is reported against. An
analysis ID is generated when the file carries none.

Example:
  pathoscope run task.json
  pathoscope run --config config.yml task.json`,
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

		t, err := task.Load(args[0])
		if err != nil {
			fail(err)
		}

		ctx := cmd.Context()

		analyzer, closeStore, err := newAnalyzer(ctx, cfg, log)
		if err != nil {
			fail(err)
		}
		defer closeStore()

		if err := analyzer.Job(t).Run(ctx); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
