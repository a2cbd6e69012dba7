package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headless-tools/headless-tools-cms/internal/config"
)

var dumpAsJSON bool

func init() { //nolint: gochecknoinits
	dumpCmd.Flags().BoolVar(&dumpAsJSON, "json", false, "Dump as JSON instead of TOML")
	configCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration after env overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.ReadConfig(configPath)
			if err != nil {
				return err
			}

			var out string
			if dumpAsJSON {
				out, err = config.DumpConfigJSON(&c)
			} else {
				out, err = config.DumpConfig(&c)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)
