package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/handiism/polarview-downloader/internal/config"
	"github.com/handiism/polarview-downloader/internal/tui"
	"go.uber.org/zap"
	cli "gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "polarview-tui"
	app.Usage = "Interactive PolarView Sentinel-1 downloader"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Path to a YAML config file",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "Write structured logs to this file (the terminal is owned by the UI)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	settings := config.DefaultSettings()
	if path := c.String("config"); path != "" {
		var err error
		if settings, err = config.Load(path); err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := zap.NewNop()
	if path := c.String("log-file"); path != "" {
		l, err := config.NewLogger(settings.LogLevel, path)
		if err != nil {
			return err
		}
		logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("command", "tui"))
	}
	defer logger.Sync()

	return tui.Run(settings, logger)
}
