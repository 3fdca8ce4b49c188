// Package logger wraps a process-wide zap logger and the field names shared
// by every sync log line.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppName is attached to every entry as the "app" field.
const AppName = "portfoliosync"

// Field keys.
const (
	KeyRunID = "run_id"
	KeyStage = "stage"
)

var (
	// Logger is the global logger instance
	Logger *zap.Logger
)

// Initialize installs the global logger at level. "debug" selects zap's
// human-readable development encoder; any other level logs JSON.
func Initialize(level string) error {
	config, err := newConfig(level)
	if err != nil {
		return err
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	Logger = built
	zap.ReplaceGlobals(Logger)
	return nil
}

func newConfig(level string) (zap.Config, error) {
	if level == "" {
		level = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zap.Config{}, err
	}

	config := zap.NewProductionConfig()
	if zapLevel == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.InitialFields = map[string]any{"app": AppName}
	return config, nil
}

// UseNop installs a logger that discards everything. Tests call it so the
// package helpers never write to stderr.
func UseNop() {
	Logger = zap.NewNop()
}

// Sync flushes any buffered log entries
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// RunID tags an entry with the sync run it belongs to.
func RunID(id string) zap.Field {
	return zap.String(KeyRunID, id)
}

// Stage tags an entry with a pipeline stage name.
func Stage(name string) zap.Field {
	return zap.String(KeyStage, name)
}

// ForStage returns a child logger for one stage of one run.
func ForStage(runID, stage string) *zap.Logger {
	return WithContext(RunID(runID), Stage(stage))
}

// WithContext returns a child logger carrying fields.
func WithContext(fields ...zap.Field) *zap.Logger {
	if Logger == nil {
		return zap.NewNop().With(fields...)
	}
	return Logger.With(fields...)
}

func Debug(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if Logger != nil {
		Logger.Error(msg, fields...)
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return Logger
}
