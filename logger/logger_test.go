package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		want     zapcore.Level
		encoding string
		wantErr  bool
	}{
		{name: "default", level: "", want: zapcore.InfoLevel, encoding: "json"},
		{name: "warn", level: "warn", want: zapcore.WarnLevel, encoding: "json"},
		{name: "debug uses console", level: "debug", want: zapcore.DebugLevel, encoding: "console"},
		{name: "invalid", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := newConfig(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Level.Level())
			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, "timestamp", cfg.EncoderConfig.TimeKey)
			assert.Equal(t, AppName, cfg.InitialFields["app"])
		})
	}
}

func TestForStageCarriesRunAndStage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = prev })

	ForStage("01RUN", "github").Info("Stage completed")
	Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "01RUN", fields[KeyRunID])
	assert.Equal(t, "github", fields[KeyStage])
}

func TestHelpersWithoutLogger(t *testing.T) {
	prev := Logger
	Logger = nil
	t.Cleanup(func() { Logger = prev })

	assert.NotPanics(t, func() {
		Info("no logger")
		ForStage("run", "stage").Warn("still fine")
		Sync()
	})
}
