package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/univhr/hrcore/internal/daemon"
	"github.com/univhr/hrcore/internal/rbac"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:    "seed",
	Short:  "Migrate the database and seed the default roles and permissions",
	PreRun: setup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		gdb, errOpen := daemon.Open(&cfg)
		if errOpen != nil {
			return errOpen
		}

		svc := rbac.NewService(gdb)
		if errSeed := daemon.Seed(context.Background(), &cfg, svc); errSeed != nil {
			return errSeed
		}

		version, errVersion := svc.SeededVersion(context.Background())
		if errVersion != nil {
			return errVersion
		}

		log.Info().Int("version", version).Msg("seed finished")
		cmd.Printf("rbac catalog at version %d\n", version)

		return nil
	},
}
