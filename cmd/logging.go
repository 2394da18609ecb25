package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BackupLogger is used when a configured logger is unavailable.
var BackupLogger = zap.Must(zap.NewDevelopment()).Sugar()

// LoggingOptions configures the logger of a command. Logs are written to stderr so they never mix with command
// output.
type LoggingOptions struct {
	Level  string
	Format string
}

func (o *LoggingOptions) AddCLIFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&o.Format, "log-format", "console", "log format: console or json")
}

func (o *LoggingOptions) CreateLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	if o.Format != "console" && o.Format != "json" {
		return nil, fmt.Errorf("invalid log format: %q", o.Format)
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = o.Format
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.Sampling = nil
	return config.Build()
}

func (o *LoggingOptions) MustCreateLogger() *zap.SugaredLogger {
	logger, err := o.CreateLogger()
	if err != nil {
		BackupLogger.Fatalf("Failed to create logger: %s", err)
	}
	return logger.Sugar()
}
