package app

import (
	"github.com/spf13/cobra"

	"github.com/univhr/hrcore/internal/config"
)

func init() { //nolint: gochecknoinits
	configDumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "Dump as JSON instead of TOML")

	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	dumpJSON bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	configDumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration, defaults and env overrides applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, errLoad := loadConfig()
			if errLoad != nil {
				return errLoad
			}

			dump := config.DumpConfig
			if dumpJSON {
				dump = config.DumpConfigJSON
			}

			out, errDump := dump(&c)
			if errDump != nil {
				return errDump
			}

			cmd.Print(out)

			return nil
		},
	}
)
