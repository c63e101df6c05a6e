// Package cli implements the websnip command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the release version, overridden at build time
var Version = "v0.2.0"

var (
	cfgFile         string
	logLevel        string
	setValues       []string
	metricsTextfile string
	inputPattern    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "websnip",
	Short: "websnip - web snippet relation-mention toolkit",
	Long: `websnip reads files of web-search snippets grouped by relation mention
(slot, entity, filler, query type) and runs them through a chain of
processing stages: filtering, cleaning, statistics, training samples,
annotation and per-entity caching.

Input is a single file or a directory walked recursively; --pattern
restricts which files are read.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(logLevel))
	},
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command; ctx is cancelled on interrupt
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "websnip %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.websnip/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringArrayVar(&setValues, "set", nil, "set a configuration key, e.g. --set clean.lowerCase=true (repeatable)")
	flags.StringVar(&metricsTextfile, "metrics-textfile", "", "write run counters to this Prometheus textfile")
	flags.StringVar(&inputPattern, "pattern", "", "glob restricting which input files are read (input.pattern)")

	_ = viper.BindPFlag("input.pattern", flags.Lookup("pattern"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.websnip")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// WEBSNIP_CLEAN_LOWERCASE and friends
	bindEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// newLogger builds the stderr text logger for a level name
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
