package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/studiowebux/restsynth/internal/cli"
	"github.com/studiowebux/restsynth/internal/config"
)

var (
	version = "0.1.0"
)

// app is built by the root PersistentPreRunE before any command runs
var app *cli.App

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var failed *cli.RequestFailedError
		if !errors.As(err, &failed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "restsynth",
	Short: "Synthesize and execute HTTP requests from templates and OpenAPI documents",
	Long: `restsynth turns request templates and OpenAPI operations into concrete
HTTP requests. Placeholders ({{name}} or ${name}) are resolved from variable
files, named environments and -e key=value pairs.

Examples:
  restsynth request GET '{{baseUrl}}/pets' -e baseUrl=https://api.local
  restsynth openapi listPets --spec-file petstore.yaml --vars vars.yaml
  restsynth catalog --spec-url https://api.local/openapi.json --out ./catalog
  restsynth env create dev --vars dev.env --spec-file petstore.yaml --use
  restsynth env request exec listPets --filter 'items[0].name'`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// Persistent flags
var (
	flagConfig    string
	flagVerbose   bool
	flagEnv       string
	flagVarsFile  string
	flagExtraVars []string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Settings file (default $RESTSYNTH_HOME/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "Environment to use (default: configured or current)")
	rootCmd.PersistentFlags().StringVar(&flagVarsFile, "vars", "", "Variables file (.yaml, .json or .env)")
	rootCmd.PersistentFlags().StringArrayVarP(&flagExtraVars, "extra-vars", "e", []string{}, "Set variable (key=value), can be repeated")

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(openapiCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(historyCmd)
}

// setup installs the logger, then loads the settings and the environment store
func setup() error {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	settingsFile, err := config.ExpandPath(flagConfig)
	if err != nil {
		return err
	}
	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return err
	}
	slog.Debug("settings loaded",
		"dir", config.ConfigDir,
		"default_env", settings.DefaultEnv,
		"output", settings.Output,
		"timeout", settings.Timeout,
		"history", settings.History,
	)

	app = cli.NewApp(settings, config.NewStore(config.EnvironmentsDir))
	return nil
}

func varOptions() cli.VarOptions {
	return cli.VarOptions{
		Env:      flagEnv,
		VarsFile: flagVarsFile,
		Extra:    flagExtraVars,
	}
}
