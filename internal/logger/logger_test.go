package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}

func TestModuleLoggerFallback(t *testing.T) {
	l := GetModuleLogger("clicker")
	assert.NotNil(t, l)
	assert.NotPanics(t, func() {
		LogCatchup("42", map[string]int{"iron_ingot": 1}, 12.5, 3)
	})
}

func TestSetLevel(t *testing.T) {
	SetLevel("error")
	assert.Equal(t, zapcore.ErrorLevel, level.Level())
	SetLevel("info")
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}
