package app

import (
	"github.com/spf13/cobra"

	"github.com/headless-tools/headless-tools-cms/internal/config"
	"github.com/headless-tools/headless-tools-cms/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	configPath string // Path to the configuration directory
	cfg        config.Config
	err        error
	devMode    bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the headless-tools-cms web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			return d.Start(cmd.Context())
		},
	}
)
