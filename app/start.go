package app

import (
	"github.com/spf13/cobra"

	"github.com/univhr/hrcore/internal/config"
	"github.com/univhr/hrcore/internal/daemon"
	"github.com/univhr/hrcore/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	cfg     config.Config
	err     error
	devMode bool

	startCmd = &cobra.Command{
		Use:    "start",
		Short:  "Start the hrcore web service",
		PreRun: setup,
		RunE: func(_ *cobra.Command, _ []string) error {
			d, errNew := daemon.New(&cfg)
			if errNew != nil {
				return errNew
			}

			return d.Start()
		},
	}
)

// setup loads the config and initializes the logger for every command.
func setup(_ *cobra.Command, _ []string) {
	if cfg, err = loadConfig(); err != nil {
		panic(err)
	}

	if devMode {
		cfg.DevMode = true
	}

	if err = logger.Init(cfg.Log); err != nil {
		panic(err)
	}
}
