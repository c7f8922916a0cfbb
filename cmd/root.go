package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexloop/lexloop/internal/app"
	"github.com/lexloop/lexloop/internal/config"
	"github.com/lexloop/lexloop/internal/logger"
	"github.com/lexloop/lexloop/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "lexloop",
	Short:         "Adaptive vocabulary exercise engine",
	Long:          "Lexloop tracks per-concept mastery, schedules spaced reviews, and generates exercise batches tuned to each learner's current profile.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides LEXLOOP_DB)")

	rootCmd.AddCommand(exposeCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(weakCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the engine configuration, letting the --db flag win
// over the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return cfg, err
		}
		cfg.DSN = p
	}
	return cfg, nil
}

// openEngine assembles the engine for a command. Callers must Close()
// the engine and Sync() the logger.
func openEngine(cmd *cobra.Command, opts app.Options) (*app.Engine, *logger.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	eng, err := app.New(cmd.Context(), cfg, log, opts)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	return eng, log, nil
}
