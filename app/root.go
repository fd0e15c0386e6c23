// Package app implements the main application commands.
package app

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/univhr/hrcore/internal/config"
)

const envPrefix = "HRCORE"

var rootCmd = &cobra.Command{
	Use:   "hrcore",
	Short: "hrcore is the RBAC and leave approval service of the university HR backend",
	Long: `hrcore resolves employee permissions from configurable roles and
scoped role assignments and runs the two-stage (supervisor, HR) leave
approval workflow backed by the leave-credit ledger.`,
	Args: cobra.OnlyValidArgs,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// a missing .env is fine, the environment may already be set
		if errEnv := godotenv.Load(); errEnv == nil {
			log.Debug().Msg(".env loaded")
		}
	},
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().String("config", "", "Directory holding main.toml (default ./etc/)")

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if errBind := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); errBind != nil {
		panic(errBind)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config directory given by --config or HRCORE_CONFIG.
func loadConfig() (config.Config, error) {
	return config.ReadConfig(viper.GetString("config"))
}
