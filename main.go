// package main is the entry point for the release runner
package main

import (
	"log/slog"
	"os"

	"github.com/alan/release-runner/cmd/bumpversion"
	configcmd "github.com/alan/release-runner/cmd/config"
	"github.com/alan/release-runner/cmd/createrelease"
	"github.com/alan/release-runner/cmd/getversion"
	"github.com/alan/release-runner/cmd/updatesubmodule"
	"github.com/alan/release-runner/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	var configFile string
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:   "release-runner",
		Short: "A CLI tool for automating GitHub releases from a CI/CD pipeline",
		Long: `release-runner is a CLI tool that drives the release stages of a CI/CD
pipeline against the GitHub API: resolve the current version, bump it,
create the release, and move the submodule pin in a parent repository.

Stages pass the version along through current_version.txt and
new_version.txt in the working directory.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(logLevel, logFormat)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "C", "release-runner.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "text", "Log format (text, json)")

	// Create commands with access to the global config file
	rootCmd.AddCommand(configcmd.NewConfigCmd(&configFile, config.LoadConfig, config.SaveConfig))
	rootCmd.AddCommand(getversion.NewGetVersionCmd(&configFile, config.LoadConfig, config.SaveConfig))
	rootCmd.AddCommand(bumpversion.NewBumpVersionCmd(&configFile, config.LoadConfig, config.SaveConfig))
	rootCmd.AddCommand(createrelease.NewCreateReleaseCmd(&configFile, config.LoadConfig, config.SaveConfig))
	rootCmd.AddCommand(updatesubmodule.NewUpdateSubmoduleCmd(&configFile, config.LoadConfig, config.SaveConfig))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}
