// Package observability holds the process-wide CLI logger.
//
// Commands log through CLILogger rather than printing to stderr directly
// so the console and structured profiles stay interchangeable: operators
// get readable console lines, automation gets JSON.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging profiles.
const (
	// ProfileConsole emits human-readable lines for interactive use.
	ProfileConsole = "console"

	// ProfileStructured emits JSON lines for machine consumption.
	ProfileStructured = "structured"
)

// CLILogger is the logger used by all commands. It defaults to a console
// logger at info level; Init reconfigures it from loaded config.
var CLILogger = mustBuild("info", ProfileConsole)

// Init reconfigures CLILogger with the given level and profile.
func Init(level, profile string) error {
	logger, err := build(level, profile)
	if err != nil {
		return err
	}
	CLILogger = logger
	return nil
}

// Sync flushes buffered log entries. Called on process exit.
func Sync() {
	_ = CLILogger.Sync()
}

func build(level, profile string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	switch profile {
	case ProfileConsole, "":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.TimeKey = "" // operator output, no timestamps
	case ProfileStructured:
		cfg.Encoding = "json"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	default:
		return nil, fmt.Errorf("unknown logging profile %q", profile)
	}

	return cfg.Build()
}

func mustBuild(level, profile string) *zap.Logger {
	logger, err := build(level, profile)
	if err != nil {
		panic(err)
	}
	return logger
}
