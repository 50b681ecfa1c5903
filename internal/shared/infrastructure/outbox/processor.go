package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// ProcessorConfig tunes the relay loop.
type ProcessorConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries counts delivery attempts; the attempt that reaches it
	// dead-letters the message.
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration

	// Zero disables the periodic job.
	CleanupInterval time.Duration
	RetentionDays   int
	StatsInterval   time.Duration
}

// DefaultProcessorConfig returns the settings used when nothing is configured.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		CleanupInterval:  24 * time.Hour,
		RetentionDays:    14,
		StatsInterval:    30 * time.Second,
	}
}

// Stats is a point-in-time view of the relay.
type Stats struct {
	IsRunning       bool       `json:"running"`
	PublishedCount  uint64     `json:"published"`
	FailedCount     uint64     `json:"failed"`
	DeadCount       uint64     `json:"dead"`
	LagSeconds      float64    `json:"lag_seconds"`
	LastError       string     `json:"last_error,omitempty"`
	LastErrorAt     *time.Time `json:"last_error_at,omitempty"`
	LastProcessedAt *time.Time `json:"last_processed_at,omitempty"`
	OldestMessageAt *time.Time `json:"oldest_message_at,omitempty"`
}

type outcome int

const (
	published outcome = iota
	retrying
	deadLettered
)

var outcomeMetric = map[outcome]string{
	published:    observability.MetricEventsPublished,
	retrying:     observability.MetricEventsFailed,
	deadLettered: observability.MetricEventsDead,
}

// Processor drains the outbox queue into an event publisher. Delivery is
// at least once: a message is marked published only after the publisher
// accepted it.
type Processor struct {
	queue     Queue
	publisher eventbus.Publisher
	config    ProcessorConfig
	metrics   observability.Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	stats  Stats
}

// NewProcessor creates a stopped processor.
func NewProcessor(queue Queue, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		queue:     queue,
		publisher: publisher,
		config:    config,
		metrics:   observability.NoopMetrics{},
		logger:    logger.With("component", "outbox"),
		now:       time.Now,
	}
}

// WithMetrics reports delivery outcomes to m.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Start launches the relay loop. Calling it on a running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(loopCtx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"max_retries", p.config.MaxRetries,
	)
	return nil
}

// Stop cancels the loop and waits for the batch in flight to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

// IsRunning reports whether the loop is active.
func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Processor) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	poll := time.NewTicker(p.config.PollInterval)
	defer poll.Stop()
	cleanup, stopCleanup := optionalTicker(p.config.CleanupInterval)
	defer stopCleanup()
	report, stopReport := optionalTicker(p.config.StatsInterval)
	defer stopReport()

	for {
		select {
		case <-ctx.Done():
			return
		case <-poll.C:
			if err := p.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		case <-cleanup:
			if _, err := p.Cleanup(ctx); err != nil {
				p.logger.Error("outbox cleanup failed", "error", err)
			}
		case <-report:
			s := p.Stats()
			p.logger.Info("outbox stats",
				"published", s.PublishedCount,
				"failed", s.FailedCount,
				"dead", s.DeadCount,
				"lag_seconds", s.LagSeconds,
			)
		}
	}
}

// optionalTicker returns a nil channel, which never fires, when d is not positive.
func optionalTicker(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// ProcessOnce delivers one batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	batch, err := p.queue.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.mu.Lock()
		p.noteError(err)
		p.mu.Unlock()
		return err
	}

	p.observeBatch(batch)
	for _, msg := range batch {
		p.deliver(ctx, msg)
	}
	return nil
}

func (p *Processor) deliver(ctx context.Context, msg *Message) {
	log := p.logger.With(msg.trace()...)

	err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if err == nil {
		if markErr := p.queue.MarkPublished(ctx, msg.ID); markErr != nil {
			log.Error("published message could not be marked", "error", markErr)
			return
		}
		p.record(published, msg, nil)
		return
	}

	log.Warn("publish failed", "attempt", msg.RetryCount+1, "error", err)
	if !msg.CanRetry(p.config.MaxRetries) {
		if markErr := p.queue.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			log.Error("message could not be dead-lettered", "error", markErr)
		}
		p.record(deadLettered, msg, err)
		return
	}

	next := p.now().Add(p.backoff(msg.RetryCount))
	if markErr := p.queue.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		log.Error("retry could not be scheduled", "error", markErr)
	}
	p.record(retrying, msg, err)
}

// backoff doubles from the base for every earlier failure, up to the max.
func (p *Processor) backoff(failures int) time.Duration {
	base, ceiling := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if ceiling <= 0 {
		ceiling = time.Minute
	}
	if d := base << convert.ShiftCount(failures, 30); d > 0 && d < ceiling {
		return d
	}
	return ceiling
}

// Cleanup deletes published messages past the retention window.
func (p *Processor) Cleanup(ctx context.Context) (int64, error) {
	days := p.config.RetentionDays
	if days <= 0 {
		return 0, nil
	}
	deleted, err := p.queue.DeleteOld(ctx, days)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("outbox cleanup", "deleted", deleted, "retention_days", days)
	}
	return deleted, nil
}

// Stats returns a copy of the current counters.
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.IsRunning = p.cancel != nil
	return s
}

func (p *Processor) record(o outcome, msg *Message, err error) {
	p.mu.Lock()
	switch o {
	case published:
		p.stats.PublishedCount++
	case retrying:
		p.stats.FailedCount++
	case deadLettered:
		p.stats.DeadCount++
	}
	if err != nil {
		p.noteError(err)
	}
	p.mu.Unlock()

	p.metrics.Counter(outcomeMetric[o], 1, observability.T("routing_key", msg.RoutingKey))
}

// noteError must be called with p.mu held.
func (p *Processor) noteError(err error) {
	at := p.now()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &at
}

func (p *Processor) observeBatch(batch []*Message) {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.LastProcessedAt = &now
	p.stats.OldestMessageAt = nil
	p.stats.LagSeconds = 0
	for _, msg := range batch {
		if p.stats.OldestMessageAt == nil || msg.CreatedAt.Before(*p.stats.OldestMessageAt) {
			oldest := msg.CreatedAt
			p.stats.OldestMessageAt = &oldest
		}
	}
	if p.stats.OldestMessageAt != nil {
		p.stats.LagSeconds = now.Sub(*p.stats.OldestMessageAt).Seconds()
	}

	p.metrics.Gauge(observability.MetricOutboxLag, p.stats.LagSeconds)
}
