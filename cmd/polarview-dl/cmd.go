package main

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitFailure     = 1
	exitInterrupted = 130
)

var settingsFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "Path to a YAML config file",
	},
	cli.StringFlag{
		Name:  "date, d",
		Usage: "Target date as YYYY-MM-DD, \"today\" or \"yesterday\" (default: yesterday)",
	},
	cli.StringFlag{
		Name:  "output, o",
		Usage: "Download folder; supports {date}, {year}, {month} and {day}",
	},
	cli.StringFlag{
		Name:  "log-level",
		Usage: "Structured log level: debug, info, warn or error",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "Write structured logs to this file instead of stderr",
	},
	cli.Float64Flag{
		Name:  "rate",
		Usage: "Maximum HTTP requests per second (0 = unlimited)",
	},
	cli.BoolFlag{
		Name:  "verbose",
		Usage: "Show verbose progress messages",
	},
}

var failOnQueryErrorFlag = cli.BoolFlag{
	Name:  "fail-on-query-error",
	Usage: "Exit with status 1 when the scene query fails (default: report it and exit 0)",
}

var downloadFlags = append([]cli.Flag{
	failOnQueryErrorFlag,
	cli.BoolFlag{
		Name:  "manifest",
		Usage: "Write a manifest of the batch into the download folder",
	},
	cli.StringFlag{
		Name:  "manifest-format",
		Usage: "Manifest format: txt (URL list) or csv",
	},
	cli.BoolFlag{
		Name:  "quicklook",
		Usage: "Render a JPEG quicklook next to every downloaded scene",
	},
}, settingsFlags...)

var queryFlags = append([]cli.Flag{failOnQueryErrorFlag}, settingsFlags...)

var configFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "save",
		Usage: "Write the effective configuration to this path",
	},
}, settingsFlags...)

var commands = cli.Commands{
	cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download all Sentinel-1 scenes of the target date (default command)",
		Flags:   downloadFlags,
		Action:  downloadAction,
	},
	cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Print the download links of the target date without downloading",
		Flags:   settingsFlags,
		Action:  queryAction,
	},
	cli.Command{
		Name:   "config",
		Usage:  "Print the effective configuration as YAML",
		Flags:  configFlags,
		Action: configAction,
	},
	cli.Command{
		Name:   "version",
		Usage:  "Print the version number of polarview-dl",
		Action: versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "polarview-dl"
	app.Usage = "Download daily Sentinel-1 SAR scenes from PolarView"
	app.Version = version
	app.HideVersion = true
	app.ErrWriter = os.Stderr
	app.Commands = commands
	app.Flags = downloadFlags
	app.Action = downloadAction
	return
}
