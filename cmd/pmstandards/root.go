package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/pmstandards/internal/config"
	"github.com/MrSnakeDoc/pmstandards/internal/logger"
	"github.com/MrSnakeDoc/pmstandards/internal/version"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "pmstandards",
	Short:         "Reference API comparing PMBOK, PRINCE2 and ISO 21502",
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnvFile(envFile)
	},
	// No subcommand means serve.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to pre-load (missing file is ignored)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override PMSTD_LOG_LEVEL (debug, info, warn, error)")
}

// loadConfig reads the environment, applies flag overrides and validates.
func loadConfig(override func(*config.Config)) (*config.Config, logger.Logger, error) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog), nil
}
