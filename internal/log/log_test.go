package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLogger_WithComponentWritesComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).WithComponent(ComponentCache)

	logger.Info("hello", "key", "value")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "component="))
	assert.Contains(t, line, "component=cache")
	assert.Contains(t, line, "key=value")
	assert.Equal(t, ComponentCache, logger.Component())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewContext_RoundTripsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).WithComponent(ComponentHTTP)

	got := FromContext(NewContext(context.Background(), logger))

	require.NotNil(t, got)
	assert.Same(t, logger, got)
	assert.Equal(t, ComponentHTTP, got.Component())
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}

func TestStructuredLogger_LogCalculation(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))

	sl.LogCalculation(context.Background(), "auto-loan", "loan", true, 1500*time.Millisecond)

	line := buf.String()
	assert.Contains(t, line, "calculator=auto-loan")
	assert.Contains(t, line, "kind=loan")
	assert.Contains(t, line, "cache_hit=true")
	assert.Contains(t, line, "duration_ms=1500")
	assert.Contains(t, line, "component=calculator")
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf).WithComponent(ComponentTemplate))

	sl.LogError(context.Background(), "render failed", errors.New("boom"), ErrorTypeInternal, OpRender, NewFields())

	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "error=boom")
	assert.Contains(t, line, "error_type=internal_error")
	assert.Contains(t, line, "operation=render")
	assert.Contains(t, line, "component=template")
	assert.Equal(t, 1, strings.Count(line, "component="))
}

func TestStructuredLogger_LogWarningAcceptsNilFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf).WithComponent(ComponentAMQP))

	sl.LogWarning(context.Background(), "publish failed", context.DeadlineExceeded, ErrorTypeTimeout, OpPublish, nil)

	line := buf.String()
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, "error_type=timeout_error")
	assert.Contains(t, line, "component=amqp")
}

func TestStructuredLogger_LogRejectedInputAtDebug(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf).WithComponent(ComponentCalculator))

	sl.LogRejectedInput(context.Background(), "mortgage", errors.New("Loan Term (years) must not exceed 50"))

	line := buf.String()
	assert.Contains(t, line, "level=DEBUG")
	assert.Contains(t, line, "calculator=mortgage")
	assert.Contains(t, line, "error_type=validation_error")
	assert.Contains(t, line, "operation=validate")
	assert.Equal(t, 1, strings.Count(line, "component="))
}
