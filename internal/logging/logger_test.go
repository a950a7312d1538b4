package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_JSONAndConsole(t *testing.T) {
	l, err := New(Config{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestFieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core).Named("zonemap").With(String("view", "v1"))

	l.Warn("skipped malformed geometry", Int("skipped", 3), Err(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "zonemap", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "v1", ctx["view"])
	assert.Equal(t, int64(3), ctx["skipped"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestErr_Nil(t *testing.T) {
	assert.Equal(t, "<nil>", Err(nil).Value)
}

func TestDefault(t *testing.T) {
	assert.NotNil(t, Default())
	SetDefault(nil)
	assert.NotNil(t, Default())

	core, logs := observer.New(zapcore.InfoLevel)
	SetDefault(NewFromCore(core))
	defer SetDefault(NewNopLogger())
	Default().Info("hello")
	assert.Equal(t, 1, logs.Len())
}
