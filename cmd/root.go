package cmd

import (
	"strings"

	"golang-kvconfig/internal/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "kvconf",
	Short:        "kvconf reads, writes and applies key=value configuration blobs",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitLogger(logConfig(logging.LogConfig{}))
	},
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// logConfig overlays flags and KVCONF_* variables onto base. Unset values keep base,
// then fall back to the flag defaults.
func logConfig(base logging.LogConfig) logging.LogConfig {
	if viper.IsSet("log-level") || base.Level == "" {
		base.Level = viper.GetString("log-level")
	}
	if viper.IsSet("log-format") || base.Format == "" {
		base.Format = viper.GetString("log-format")
	}
	return base
}

func init() {
	viper.SetEnvPrefix("KVCONF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.String("log-format", "simple", "Log format (json, text, simple, compact)")
	for _, name := range []string{"log-level", "log-format"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err) // This should never happen during initialization
		}
	}
}
