package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/handiism/polarview-downloader/internal/config"
	"go.uber.org/zap"
	cli "gopkg.in/urfave/cli.v1"
)

// loadSettings builds the effective settings: defaults, then the optional
// config file, then command line flags.
func loadSettings(c *cli.Context) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if path := c.String("config"); path != "" {
		var err error
		settings, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if c.IsSet("date") {
		settings.TargetDate = c.String("date")
	}
	if c.IsSet("output") {
		settings.DownloadsPath = c.String("output")
	}
	if c.IsSet("log-level") {
		settings.LogLevel = c.String("log-level")
	}
	if c.IsSet("rate") {
		settings.RequestsPerSecond = c.Float64("rate")
	}
	if c.Bool("manifest") {
		settings.CreateManifest = true
	}
	if c.IsSet("manifest-format") {
		settings.ManifestFormat = c.String("manifest-format")
	}
	if c.Bool("quicklook") {
		settings.CreateQuicklook = true
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// newRunLogger builds the structured logger of one invocation. Every record
// carries a run_id so that runs sharing a log file can be told apart.
func newRunLogger(c *cli.Context, settings *config.Settings) (*zap.Logger, error) {
	output := "stderr"
	if path := c.String("log-file"); path != "" {
		output = path
	}

	logger, err := config.NewLogger(settings.LogLevel, output)
	if err != nil {
		return nil, err
	}
	command := c.Command.Name
	if command == "" {
		command = "download"
	}
	return logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("command", command),
	), nil
}
