package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// HealthStatus is the state reported by a component check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// rank orders statuses from best to worst.
func (s HealthStatus) rank() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthCheckResult is the outcome of one component check.
type HealthCheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// HealthChecker probes one component.
type HealthChecker func(ctx context.Context) HealthCheckResult

// HealthRegistry holds the worker's readiness checks.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	timeout  time.Duration
}

// NewHealthRegistry creates a registry whose checks each get timeout to answer.
func NewHealthRegistry(timeout time.Duration) *HealthRegistry {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthRegistry{
		checkers: make(map[string]HealthChecker),
		timeout:  timeout,
	}
}

// Register adds or replaces the check for a component.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Names returns the registered component names in order.
func (r *HealthRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OverallHealth aggregates every check. The overall status is the worst one.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// Check runs all checks concurrently.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		overall = OverallHealth{
			Status:    HealthStatusHealthy,
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]HealthCheckResult, len(checkers)),
		}
	)
	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			start := time.Now()
			result := checker(ctx)
			result.Duration = time.Since(start)

			mu.Lock()
			defer mu.Unlock()
			overall.Checks[name] = result
			if result.Status.rank() > overall.Status.rank() {
				overall.Status = result.Status
			}
		}(name, checker)
	}
	wg.Wait()

	return overall
}

// LivenessHandler answers 200 while the process is serving.
func LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, map[string]string{"status": string(HealthStatusHealthy)})
	})
}

// ReadinessHandler runs the registry and answers 503 when any check is unhealthy.
// Degraded components still report ready.
func ReadinessHandler(r *HealthRegistry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		health := r.Check(req.Context())
		code := http.StatusOK
		if health.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, health)
	})
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// PingChecker reports unhealthy when ping fails. Use it for the database.
func PingChecker(component string, ping func(ctx context.Context) error) HealthChecker {
	return pingChecker(component, ping, HealthStatusUnhealthy)
}

// OptionalPingChecker reports degraded when ping fails. Use it for
// dependencies the worker can run without, such as Redis.
func OptionalPingChecker(component string, ping func(ctx context.Context) error) HealthChecker {
	return pingChecker(component, ping, HealthStatusDegraded)
}

func pingChecker(component string, ping func(ctx context.Context) error, failed HealthStatus) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: failed, Message: component + " unreachable: " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy}
	}
}

// BreakerChecker reports degraded while the publisher's circuit is not closed.
func BreakerChecker(state func() string) HealthChecker {
	return func(context.Context) HealthCheckResult {
		s := state()
		if s == "closed" {
			return HealthCheckResult{Status: HealthStatusHealthy}
		}
		return HealthCheckResult{Status: HealthStatusDegraded, Message: "publisher circuit " + s}
	}
}
