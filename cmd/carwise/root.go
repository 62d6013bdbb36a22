package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"carwise/config"
	"carwise/internal/app"
	"carwise/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "carwise",
	Short:         "VIN profiles and ranked used-car search",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("log-format", "", "Log format (text, json); empty picks text on a terminal")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	_ = viper.BindPFlag("CARWISE_LOG_FORMAT", flags.Lookup("log-format"))
	_ = viper.BindPFlag("CARWISE_LOG_LEVEL", flags.Lookup("log-level"))
}

// loadApp loads configuration, installs the logger and wires the application.
func loadApp() (*app.App, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logging.Setup(cfg.Logging.Format, cfg.Logging.Level); err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return a, cfg, nil
}

// closeApp releases a one-shot command's resources, logging any failure.
func closeApp(a io.Closer) {
	if err := a.Close(); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
