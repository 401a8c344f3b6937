package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		dev     bool
		wantErr bool
	}{
		{name: "production info", level: "info"},
		{name: "development debug", level: "debug", dev: true},
		{name: "warn", level: "warn"},
		{name: "invalid level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.dev)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.NotPanics(t, func() { logger.Infow("test", "key", "value") })
		})
	}
}

func TestNewLogger_LevelIsApplied(t *testing.T) {
	logger, err := NewLogger("error", false)
	require.NoError(t, err)

	core := logger.Desugar().Core()
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}
