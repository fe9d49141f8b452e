package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNoopLogger_ReturnsSharedInstance(t *testing.T) {
	a := GetNoopLogger()
	b := GetNoopLogger()
	require.NotNil(t, a)
	assert.Same(t, a, b)
}

func TestNoopLogger_WithField_ReturnsItself(t *testing.T) {
	l := GetNoopLogger()
	assert.Same(t, l, l.WithField("component", "test"))
}

func TestNoopLogger_MethodsDoNotPanic(t *testing.T) {
	l := GetNoopLogger()
	assert.NotPanics(t, func() {
		l.Debug("d", "k", 1)
		l.Info("i")
		l.Warn("w", "k", "v")
		l.Error("e", "err", nil)
	})
}

func TestNewSlogLogger_LevelsAndFields(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		l := NewSlogLogger(level)
		require.NotNil(t, l)
		child := l.WithField("component", "test")
		require.NotNil(t, child)
		assert.NotPanics(t, func() { child.Info("hello", "k", "v") })
	}
}
