// Package observability provides structured logging, metrics and health
// checks shared by the perfboard CLI and worker.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogLevel is the minimum level written.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var slogLevels = map[LogLevel]slog.Level{
	LogLevelDebug: slog.LevelDebug,
	LogLevelInfo:  slog.LevelInfo,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelError: slog.LevelError,
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  LogLevel
	Format LogFormat
	// Output defaults to os.Stderr so command output on stdout stays clean.
	Output         io.Writer
	AddSource      bool
	ServiceName    string
	ServiceVersion string
}

// DefaultLogConfig is used before configuration has been read.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatText,
		Output:         os.Stderr,
		ServiceName:    "perfboard",
		ServiceVersion: "dev",
	}
}

// LogConfigFor derives a LogConfig from the application settings. Production
// defaults to JSON with source locations; explicit level and format win.
func LogConfigFor(appEnv, level, format, service, version string) LogConfig {
	cfg := DefaultLogConfig()
	if appEnv == "production" {
		cfg.Format = LogFormatJSON
		cfg.AddSource = true
	}
	if level != "" {
		cfg.Level = LogLevel(strings.ToLower(level))
	}
	if format != "" {
		cfg.Format = LogFormat(strings.ToLower(format))
	}
	if service != "" {
		cfg.ServiceName = service
	}
	if version != "" {
		cfg.ServiceVersion = version
	}
	return cfg
}

// NewLogger builds a slog logger that stamps the service identity on every
// record and adds the Trace found in the record's context.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseSlogLevel(cfg.Level), AddSource: cfg.AddSource}

	var base slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.Format == LogFormatJSON {
		base = slog.NewJSONHandler(out, opts)
	}

	var service []slog.Attr
	if cfg.ServiceName != "" {
		service = append(service, slog.String("service", cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		service = append(service, slog.String("version", cfg.ServiceVersion))
	}
	if len(service) > 0 {
		base = base.WithAttrs(service)
	}
	return slog.New(traceHandler{base})
}

func parseSlogLevel(level LogLevel) slog.Level {
	if l, ok := slogLevels[level]; ok {
		return l
	}
	return slog.LevelInfo
}

// traceHandler copies the context's Trace onto each record.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(TraceFromContext(ctx).attrs()...)
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}
