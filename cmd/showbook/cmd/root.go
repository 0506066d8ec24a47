// Package cmd implements the CLI commands for showbook.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmylchreest/showbook/internal/config"
	"github.com/jmylchreest/showbook/internal/observability"
	"github.com/jmylchreest/showbook/internal/version"
	"github.com/spf13/cobra"
)

var (
	// cfgFile holds the config file path from CLI flag.
	cfgFile string

	// appConfig is loaded before any subcommand runs.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "showbook",
	Short:   "Catalog service for marching shows and arrangements",
	Version: version.Short(),
	Long: `showbook serves a catalog of marching shows and musical arrangements.

Every listing can be filtered, sorted and paginated through a JSON query
vocabulary carried in shareable URLs, and named presets provide curated
views such as "Featured" or "Beginner Friendly".`,
	SilenceUsage: true,
	// PersistentPreRunE is set in init() to avoid initialization cycle
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	}

	// Global flags
	// Note: These flags are NOT bound to viper. They override the loaded
	// config only when explicitly set, preserving the priority
	// CLI flag > env var > config > default.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, ./configs/config.yaml, /etc/showbook/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// initConfig loads configuration, applies explicit logging flags and
// installs the default logger.
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		cfg.Logging.Level = strings.ToLower(level)
	}
	if flags.Changed("log-format") {
		format, _ := flags.GetString("log-format")
		cfg.Logging.Format = strings.ToLower(format)
	}

	// Handle "warning" as an alias for "warn"
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}

	logger := observability.NewLoggerWithWriter(cfg.Logging, os.Stderr).
		With(slog.String("app", version.ApplicationName))
	slog.SetDefault(logger)

	appConfig = cfg
	return nil
}
