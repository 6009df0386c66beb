package config

import (
	"fmt"

	"go.uber.org/zap"
)

// LogLevels lists the accepted values of Settings.LogLevel.
var LogLevels = []string{"debug", "info", "warn", "error"}

// NewLogger builds a zap logger for level writing to outputPaths.
//
// "debug" selects the human readable development encoder; all other
// levels use the JSON production encoder. Without outputPaths the logger
// writes to stdout.
//
// Example:
//
//	logger, err := config.NewLogger("info")
//	logger, err := config.NewLogger("debug", "/var/log/polarview.log")
func NewLogger(level string, outputPaths ...string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	case "info", "":
		cfg = zap.NewProductionConfig()
	case "warn":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	cfg.OutputPaths = outputPaths
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
