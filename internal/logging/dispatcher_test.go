package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/navwar/navsim/internal/dispatcher"
)

var _ dispatcher.Logger = (*DispatcherLogger)(nil)

func newBufferedLogger() (*DispatcherLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(zerolog.DebugLevel)
	return NewDispatcherLogger(zl), &buf
}

func TestDispatcherLogger_Debug(t *testing.T) {
	l, buf := newBufferedLogger()
	l.Debug("handling event", "command", "unit:move", "payloadBytes", 42)

	out := buf.String()
	assert.Contains(t, out, "handling event")
	assert.Contains(t, out, `"command":"unit:move"`)
	assert.Contains(t, out, `"payloadBytes":42`)
}

func TestDispatcherLogger_Info(t *testing.T) {
	l, buf := newBufferedLogger()
	l.Info("game started", "name", "Coral Sea")

	out := buf.String()
	assert.Contains(t, out, "game started")
	assert.Contains(t, out, `"name":"Coral Sea"`)
}

func TestDispatcherLogger_Error(t *testing.T) {
	l, buf := newBufferedLogger()
	l.Error("event failed", "command", "game:start")

	out := buf.String()
	assert.Contains(t, out, "event failed")
	assert.Contains(t, out, `"level":"error"`)
}

func TestToFields(t *testing.T) {
	fields := toFields([]any{"a", 1, "b", "two"})
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, fields)

	// odd trailing value is dropped
	fields = toFields([]any{"a", 1, "dangling"})
	assert.Equal(t, map[string]any{"a": 1}, fields)

	// non-string keys are skipped
	fields = toFields([]any{42, "x", "b", 2})
	assert.Equal(t, map[string]any{"b": 2}, fields)
}
