// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "headless-tools-cms",
	Short: "headless-tools-cms is the content backend of the headless tools site",
	Long: `headless-tools-cms is the content backend of the headless tools site.
It serves the tools catalogue, media metadata, site settings and the
analytics tracking API used by the frontend.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config directory (default ./etc/)")
}
