package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/pmstandards/internal/app"
	"github.com/MrSnakeDoc/pmstandards/internal/catalog"
	"github.com/MrSnakeDoc/pmstandards/internal/config"
)

var (
	seedFixture string
	seedReset   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import the fixture file into the document store",
	Long: `Upserts every topic by key and every scenario by name from the fixture
file. Running it again with the same file changes nothing. With --reset,
stored topics and scenarios are removed first; bookmarks are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(func(c *config.Config) {
			if seedFixture != "" {
				c.FixtureFile = seedFixture
			}
		})
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Seed(ctx, seedReset)
		if errors.Is(err, catalog.ErrNoFixture) {
			return fmt.Errorf("no fixture at %s", cfg.FixtureFile)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seeded from %s in %s\n", cfg.FixtureFile, report.Duration.Round(time.Millisecond))
		fmt.Fprintf(out, "  topics:    %d created, %d updated, %d unchanged\n",
			report.Topics.Created, report.Topics.Updated, report.Topics.Unchanged)
		fmt.Fprintf(out, "  scenarios: %d created, %d updated, %d unchanged\n",
			report.Scenarios.Created, report.Scenarios.Updated, report.Scenarios.Unchanged)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFixture, "fixture", "", "fixture file (defaults to PMSTD_FIXTURE_FILE)")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "remove stored topics and scenarios before seeding")
	rootCmd.AddCommand(seedCmd)
}
