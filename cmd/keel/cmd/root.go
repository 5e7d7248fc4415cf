// Package cmd implements the keel CLI commands.
package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keeldata/keel/pkg/logging"
)

// rootCmd is the base command for the keel CLI.
var rootCmd = &cobra.Command{
	Use:   "keel",
	Short: "Inspect remote and local keel collections",
	Long: `keel is a command-line companion to the keel data layer.

It fetches collections from a remote JSON API or a local document
directory and prints them, which is handy for inspecting the data an
application will sync against.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()
		return nil
	},
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads configuration in order of precedence: flags, environment
// variables, .env file, config file, defaults.
func loadConfig() {
	// Load a .env file if present, before viper binds the environment.
	_ = godotenv.Load()

	viper.SetEnvPrefix("KEEL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")
	viper.SetConfigName(".keel")

	// Missing config files are fine.
	_ = viper.ReadInConfig()
}

// configureLogging applies the configured log level to the default logger.
func configureLogging() {
	level := viper.GetString("log-level")
	if viper.GetBool("verbose") {
		level = "debug"
	}
	logging.SetLevel(level)
}
