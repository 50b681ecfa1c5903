package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/perfboard/internal/performance/application/subscribers"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/perfboard/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/perfboard/pkg/observability"
)

// Worker drains the outbox. With a broker configured it publishes through a
// circuit breaker to RabbitMQ; otherwise events are dispatched in process to
// the activity feed.
type Worker struct {
	container *Container
	publisher eventbus.Publisher
	breaker   *eventbus.BreakerPublisher
	activity  *subscribers.ActivitySubscriber

	Processor *outbox.Processor
	Health    *observability.HealthRegistry
}

// NewWorker builds the publisher chain and health checks for c.
func NewWorker(c *Container) (*Worker, error) {
	cfg := c.Config
	w := &Worker{container: c}

	if cfg.UsesBroker() {
		rabbit, err := eventbus.NewRabbitMQPublisher(eventbus.RabbitMQConfig{
			URL:      cfg.RabbitMQURL,
			Exchange: eventbus.DefaultExchange,
			AppID:    "perfboard-worker",
		}, c.Logger)
		if err != nil {
			if cfg.IsProduction() {
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			w.publisher = eventbus.NewNoopPublisher(c.Logger)
		} else {
			breakerCfg := eventbus.DefaultBreakerConfig()
			if cfg.BreakerFailureThreshold > 0 {
				breakerCfg.FailureThreshold = convert.Uint32Clamped(cfg.BreakerFailureThreshold)
			}
			if cfg.BreakerTimeout > 0 {
				breakerCfg.Timeout = cfg.BreakerTimeout
			}
			w.breaker = eventbus.NewBreakerPublisher(rabbit, breakerCfg, c.Metrics, c.Logger)
			w.publisher = w.breaker
		}
	} else {
		bus := eventbus.NewInProcessBus(c.Logger)
		w.activity = subscribers.NewActivitySubscriber(c.Logger, c.Metrics, subscribers.DefaultActivityCapacity)
		bus.RegisterConsumer(w.activity)
		w.publisher = bus
	}

	w.Processor = outbox.NewProcessor(c.Outbox, w.publisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		CleanupInterval:  cfg.OutboxCleanupInterval,
		RetentionDays:    cfg.OutboxRetentionDays,
		StatsInterval:    cfg.OutboxStatsInterval,
	}, c.Logger).WithMetrics(c.Metrics)

	w.Health = observability.NewHealthRegistry(2 * time.Second)
	w.Health.Register("database", observability.PingChecker("database", c.DBConn.Ping))
	if c.RedisClient != nil {
		w.Health.Register("redis", observability.OptionalPingChecker("redis", func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}
	if w.breaker != nil {
		w.Health.Register("publisher", observability.BreakerChecker(w.breaker.State))
	}

	return w, nil
}

// Activity returns the in-process activity feed, or nil when events go to a broker.
func (w *Worker) Activity() *subscribers.ActivitySubscriber {
	return w.activity
}

// Start launches the outbox processor.
func (w *Worker) Start(ctx context.Context) error {
	cfg := w.container.Config
	if !cfg.OutboxProcessorEnabled {
		w.container.Logger.Info("outbox processor disabled")
		return nil
	}
	w.container.Logger.Info("starting outbox processor",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"max_retries", cfg.OutboxMaxRetries,
		"broker", cfg.UsesBroker(),
	)
	return w.Processor.Start(ctx)
}

// Stop halts the processor and closes the publisher.
func (w *Worker) Stop() {
	w.Processor.Stop()
	if err := w.publisher.Close(); err != nil {
		w.container.Logger.Warn("error closing event publisher", "error", err)
	}
}

// Handler serves liveness, readiness, processor stats, metrics and the
// activity feed.
func (w *Worker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/livez", observability.LivenessHandler())
	mux.Handle("/readyz", observability.ReadinessHandler(w.Health))
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, struct {
			Status string `json:"status"`
			outbox.Stats
		}{"ok", w.Processor.Stats()})
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, w.container.Metrics.Snapshot())
	})
	mux.HandleFunc("/activity", func(rw http.ResponseWriter, r *http.Request) {
		if w.activity == nil {
			writeJSON(rw, http.StatusNotFound, map[string]string{"error": "activity feed is only kept without a broker"})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeJSON(rw, http.StatusOK, w.activity.Recent(limit))
	})
	return mux
}

// Serve runs the health server on addr until ctx ends.
func (w *Worker) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           w.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			w.container.Logger.Warn("health server shutdown error", "error", err)
		}
	}()

	w.container.Logger.Info("health server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
