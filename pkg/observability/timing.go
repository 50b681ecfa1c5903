package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation. Stop reports the duration to whichever of
// logger and metrics were attached.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	tags      []Tag
}

// StartTimer starts timing operation now.
func StartTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now()}
}

func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags labels the metrics Stop records.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records the elapsed time; a non-nil err counts the operation as
// failed and is logged at warn level.
func (t *Timer) Stop(err error) time.Duration {
	elapsed := time.Since(t.start)
	t.log(elapsed, err)

	if t.metrics == nil {
		return elapsed
	}
	tags := append(t.tags[:len(t.tags):len(t.tags)], T(OperationKey, t.operation))
	t.metrics.Timing(MetricOperationDuration, elapsed, tags...)
	t.metrics.Counter(MetricOperationTotal, 1, tags...)
	if err != nil {
		t.metrics.Counter(MetricOperationErrors, 1, tags...)
	}
	return elapsed
}

func (t *Timer) log(elapsed time.Duration, err error) {
	if t.logger == nil {
		return
	}
	attrs := []any{OperationKey, t.operation, DurationKey, elapsed.Milliseconds()}
	if err != nil {
		t.logger.Warn("operation failed", append(attrs, ErrorKey, err.Error())...)
		return
	}
	t.logger.Debug("operation completed", attrs...)
}

// TimeOperation runs fn under a Timer and returns its error.
func TimeOperation(logger *slog.Logger, metrics Metrics, operation string, fn func() error) error {
	timer := StartTimer(operation).WithLogger(logger).WithMetrics(metrics)
	err := fn()
	timer.Stop(err)
	return err
}
