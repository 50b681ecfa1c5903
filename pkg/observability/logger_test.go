package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("task claimed", "task_id", "task-1")

		assert.Contains(t, buf.String(), "task claimed")
		assert.Contains(t, buf.String(), "task_id=task-1")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "perfboard-worker",
			ServiceVersion: "1.2.0",
		})

		logger.Info("outbox stats", "published", 3)

		entry := decodeLine(t, &buf)
		assert.Equal(t, "outbox stats", entry["msg"])
		assert.Equal(t, "perfboard-worker", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
		assert.EqualValues(t, 3, entry["published"])
	})

	t.Run("filters below the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

		logger.Info("dropped")
		assert.Empty(t, buf.String())

		logger.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestLogConfigFor(t *testing.T) {
	t.Run("development defaults", func(t *testing.T) {
		cfg := LogConfigFor("development", "", "", "", "")

		assert.Equal(t, LogLevelInfo, cfg.Level)
		assert.Equal(t, LogFormatText, cfg.Format)
		assert.Equal(t, "perfboard", cfg.ServiceName)
		assert.False(t, cfg.AddSource)
	})

	t.Run("production switches to json", func(t *testing.T) {
		cfg := LogConfigFor("production", "DEBUG", "", "perfboard-worker", "1.0.0")

		assert.Equal(t, LogLevelDebug, cfg.Level)
		assert.Equal(t, LogFormatJSON, cfg.Format)
		assert.True(t, cfg.AddSource)
		assert.Equal(t, "perfboard-worker", cfg.ServiceName)
		assert.Equal(t, "1.0.0", cfg.ServiceVersion)
	})

	t.Run("explicit format wins", func(t *testing.T) {
		cfg := LogConfigFor("production", "", "text", "", "")
		assert.Equal(t, LogFormatText, cfg.Format)
	})
}

func TestParseSlogLevel(t *testing.T) {
	tests := map[LogLevel]slog.Level{
		LogLevelDebug: slog.LevelDebug,
		LogLevelInfo:  slog.LevelInfo,
		LogLevelWarn:  slog.LevelWarn,
		LogLevelError: slog.LevelError,
		"verbose":     slog.LevelInfo,
	}
	for input, expected := range tests {
		assert.Equal(t, expected, parseSlogLevel(input), input)
	}
}

func TestTraceHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

	ctx := WithCorrelationID(context.Background(), "corr-123")
	ctx = WithActorID(ctx, "pm-1")
	ctx = WithOperation(ctx, "perfboard task approve")
	logger.With("component", "cli").InfoContext(ctx, "command start")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "corr-123", entry[CorrelationIDKey])
	assert.Equal(t, "pm-1", entry[ActorIDKey])
	assert.Equal(t, "perfboard task approve", entry[OperationKey])
	assert.Equal(t, "cli", entry["component"])

	buf.Reset()
	logger.Info("no trace")
	entry = decodeLine(t, &buf)
	assert.NotContains(t, entry, CorrelationIDKey)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))
	assert.Empty(t, ActorIDFromContext(ctx))
	assert.Empty(t, OperationFromContext(ctx))

	generated := CorrelationIDFromContext(WithCorrelationID(ctx, ""))
	assert.Len(t, generated, 36)

	assert.Equal(t, "task.claim", OperationFromContext(WithOperation(ctx, "task.claim")))

	layered := WithOperation(WithActorID(WithCorrelationID(ctx, "corr-1"), "dev-ana"), "task.claim")
	assert.Equal(t, Trace{CorrelationID: "corr-1", ActorID: "dev-ana", Operation: "task.claim"}, TraceFromContext(layered))
}
