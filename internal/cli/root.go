// Package cli wires the cobra command tree.
package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bbachinco/yeoshin/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "yeoshin",
	Short:   "Crawl event listings and their purchase options",
	Long:    `Yeoshin searches a keyword on the event listing site, walks every result, and exports one row per purchasable option.`,
	Version: "0.1.0",
}

// Execute runs the command tree. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().String("user-agent", "", "Override the browser user agent")
	rootCmd.PersistentFlags().String("proxy", "", "Proxy server for browser traffic")
	rootCmd.PersistentFlags().String("timeout", "", "Navigation timeout (e.g. 45s)")
	rootCmd.PersistentFlags().Bool("headful", false, "Run the browser with a visible window")

	cobra.OnInitialize(initLogging)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// initLogging configures the global logger from flags before any command
// runs. Info logs are suppressed by default so the progress bar owns the
// terminal; --verbose turns everything on.
func initLogging() {
	cfg, err := config.Load(rootCmd)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load configuration, using defaults")
		cfg = &config.Config{LogLevel: config.DefaultLogLevel}
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	if cfg.JSONLog {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
