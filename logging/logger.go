// Package logging builds the zap loggers used across the server.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger creates a production or development logger
func InitLogger(isDev bool) (*zap.Logger, error) {
	var config zap.Config

	if isDev {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// GooseLogger adapts a zap logger to the Printf/Fatalf logger goose expects
type GooseLogger struct {
	sugar *zap.SugaredLogger
}

// NewGooseLogger wraps logger for the migration runner
func NewGooseLogger(logger *zap.Logger) *GooseLogger {
	return &GooseLogger{sugar: logger.Named("migrate").WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *GooseLogger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(strings.TrimSuffix(format, "\n"), v...)
}

// Fatalf logs at error level and does not exit; migration errors are returned to the caller.
func (l *GooseLogger) Fatalf(format string, v ...interface{}) {
	l.sugar.Errorf(strings.TrimSuffix(format, "\n"), v...)
}
