package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DSUTIL"

var rootCmd = &cobra.Command{
	Use:   "dsutil",
	Short: "inspect and drive the DS committee state stored in a badger database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd)
	},
}

var RootCmd = rootCmd

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("datadir", "d", "/var/dscommittee/data",
		"directory of the badger database holding the committee state")
	rootCmd.PersistentFlags().String("loglevel", "info", "level for logging output")
	rootCmd.PersistentFlags().Uint("cache-size", 100, "number of epoch states kept in the read cache")
	rootCmd.PersistentFlags().Uint("target-size", 0, "protocol committee size, 0 disables the size check")
	rootCmd.PersistentFlags().String("self", "", "hex encoded public key of the local node, used for logging")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindFlags makes every flag of the command resolvable through viper, so
// DSUTIL_<FLAG> environment variables apply to flags not set on the command
// line. It also configures the global logger.
func bindFlags(cmd *cobra.Command) error {
	err := viper.BindPFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("could not bind flags: %w", err)
	}

	// push environment values into flags left unset, so that flag variables
	// observe them too
	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || setErr != nil || !viper.IsSet(f.Name) {
			return
		}
		if value := viper.GetString(f.Name); value != f.Value.String() {
			setErr = cmd.Flags().Set(f.Name, value)
		}
	})
	if setErr != nil {
		return fmt.Errorf("invalid environment value: %w", setErr)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("loglevel")))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	return nil
}
