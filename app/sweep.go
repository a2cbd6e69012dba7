package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/headless-tools/headless-tools-cms/internal/analytics"
	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete analytics events older than the retention window and exit",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err = config.ReadConfig(configPath)

		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := daemon.OpenDB(&cfg)
		if err != nil {
			return err
		}

		sweeper := analytics.NewSweeper(db, cfg.Analytics.RetentionDays, cfg.Analytics.SweepInterval)

		deleted, err := sweeper.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().Int64("deleted", deleted).Int("retention_days", cfg.Analytics.RetentionDays).
			Msg("analytics retention sweep finished")

		return nil
	},
}
