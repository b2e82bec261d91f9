package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLevel(t *testing.T) {
	assert.True(t, New("debug", false).Core().Enabled(zap.DebugLevel))
	assert.False(t, New("warn", true).Core().Enabled(zap.InfoLevel))
	assert.True(t, New("bogus", false).Core().Enabled(zap.InfoLevel))
	assert.False(t, New("bogus", false).Core().Enabled(zap.DebugLevel))
}
