// cmd/pathoscope/root.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pathoscope/internal/analysis"
	"pathoscope/internal/bowtie"
	"pathoscope/internal/config"
	"pathoscope/internal/logging"
	"pathoscope/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pathoscope",
	Short: "Diagnose virus presence in sequencing samples",
	Long: `Pathoscope runs the Virtool diagnosis pipeline: sample reads are
mapped against a virus reference with Bowtie2, host-derived alignments
are subtracted, and ambiguous reads are reassigned with an
expectation-maximization model to decide which reference sequences the
sample really contains.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("data-path", "", "Root of the data tree")
	rootCmd.PersistentFlags().Int("proc", 0, "Worker count for external aligners")
	rootCmd.PersistentFlags().String("db-host", "", "MongoDB host")
	rootCmd.PersistentFlags().Int("db-port", 0, "MongoDB port")
	rootCmd.PersistentFlags().String("db-name", "", "MongoDB database name")
}

// loadConfig resolves the configuration: defaults, then the --config
// file, then the environment, then flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("data-path") {
		cfg.DataPath, _ = flags.GetString("data-path")
	}
	if flags.Changed("proc") {
		cfg.Proc, _ = flags.GetInt("proc")
	}
	if flags.Changed("db-host") {
		cfg.DB.Host, _ = flags.GetString("db-host")
	}
	if flags.Changed("db-port") {
		cfg.DB.Port, _ = flags.GetInt("db-port")
	}
	if flags.Changed("db-name") {
		cfg.DB.Name, _ = flags.GetString("db-name")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) (*zap.SugaredLogger, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	return logging.New(debug)
}

// newAnalyzer opens the database connection and assembles the pipeline.
// The returned close function disconnects the store.
func newAnalyzer(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*analysis.Analyzer, func(), error) {
	st, err := store.Open(ctx, cfg.MongoURI(), cfg.DB.Name, log)
	if err != nil {
		return nil, nil, err
	}

	closeStore := func() {
		if err := st.Close(context.WithoutCancel(ctx)); err != nil {
			log.Errorw("closing store", "error", err)
		}
	}

	runner := bowtie.NewExecRunner(log)
	dispatcher := store.LogDispatcher{Log: log}

	return analysis.New(cfg, st, runner, dispatcher, log), closeStore, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
