// main is the entry point of the Mechanics API.
//
// COMMANDS:
//
//	mechanics-api         --config=config/local.yaml   same as serve
//	mechanics-api serve   --config=config/local.yaml   start the HTTP server
//	mechanics-api migrate --config=config/local.yaml   apply the schema and exit
//
// The config path may also come from the CONFIG_PATH environment variable.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/mechanics-api/internal/http/middleware"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "mechanics-api",
	Short:         "CRUD service for mechanic records",
	Args:          cobra.NoArgs,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration YAML file (or CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging:           JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
//
// Every handler is wrapped so request-scoped records carry request_id.
func setupLogger(env string) *slog.Logger {
	var h slog.Handler
	switch env {
	case "prod":
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "staging":
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default: // "dev" and anything unrecognised
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(middleware.ContextHandler{Handler: h})
}
