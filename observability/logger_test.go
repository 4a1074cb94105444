package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/gmc/bootstrap/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ObservabilityConfig
		wantErr bool
		level   zapcore.Level
	}{
		{
			name:  "json info",
			cfg:   config.ObservabilityConfig{LogLevel: "info", LogFormat: "json"},
			level: zapcore.InfoLevel,
		},
		{
			name:  "console debug",
			cfg:   config.ObservabilityConfig{LogLevel: "debug", LogFormat: "console"},
			level: zapcore.DebugLevel,
		},
		{
			name:  "error level",
			cfg:   config.ObservabilityConfig{LogLevel: "error", LogFormat: "json"},
			level: zapcore.ErrorLevel,
		},
		{
			name:    "unknown level",
			cfg:     config.ObservabilityConfig{LogLevel: "loud", LogFormat: "json"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(tt.level))
			if tt.level != zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
			}
		})
	}
}
