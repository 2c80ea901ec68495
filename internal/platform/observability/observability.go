package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config holds observability toggles. Exporter settings can land here later.
type Config struct {
	Enabled bool
}

// ShutdownFunc tears down any exporters wired during Setup.
type ShutdownFunc func(context.Context) error

var (
	mu    sync.RWMutex
	sink  *slog.Logger
	state Config
)

func current() (*slog.Logger, Config) {
	mu.RLock()
	defer mu.RUnlock()
	return sink, state
}

// Setup installs the instrumentation sink. Spans and metrics are emitted as
// debug-level structured log records; a real exporter can replace the sink
// without touching call sites.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	mu.Lock()
	sink = logger
	state = cfg
	mu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY] instrumentation enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY] instrumentation disabled")
		}
	}
	return func(context.Context) error { return nil }, nil
}

// Enabled reports whether instrumentation is active.
func Enabled() bool {
	_, cfg := current()
	return cfg.Enabled
}

// StartSpan records a lightweight span around an operation.
func StartSpan(ctx context.Context, component, operation string) (context.Context, func(error)) {
	logger, cfg := current()
	if logger == nil || !cfg.Enabled {
		return ctx, func(error) {}
	}

	start := time.Now()
	return ctx, func(err error) {
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.String("component", component),
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			level = slog.LevelError
			attrs = append(attrs, slog.Any("error", err))
		}
		logger.LogAttrs(ctx, level, "span", attrs...)
	}
}

// RecordMetric emits a best-effort metric datapoint.
func RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) {
	logger, cfg := current()
	if logger == nil || !cfg.Enabled {
		return
	}

	attrs := []slog.Attr{
		slog.String("metric", name),
		slog.Float64("value", value),
	}
	for k, v := range labels {
		attrs = append(attrs, slog.String(k, v))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "metric", attrs...)
}
