package observability

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Metrics records counters, gauges and distributions.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag labels one dimension of a metric.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// series holds every kind of sample recorded under one name and tag set.
type series struct {
	count   int64
	gauge   float64
	samples []float64
	timings []time.Duration
}

// InMemoryMetrics keeps samples in process. The worker exposes them as JSON
// and tests read them back directly.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*series
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: make(map[string]*series)}
}

func (m *InMemoryMetrics) update(name string, tags []Tag, fn func(*series)) {
	key := seriesKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}
	fn(s)
}

func (m *InMemoryMetrics) read(name string, tags []Tag) series {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.series[seriesKey(name, tags)]; ok {
		return *s
	}
	return series{}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.count += value })
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.gauge = value })
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.samples = append(s.samples, value) })
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.timings = append(s.timings, duration) })
}

// GetCounter returns the counter total for exactly this tag set.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.read(name, tags).count
}

// GetGauge returns the last gauge value.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.read(name, tags).gauge
}

func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	return slices.Clone(m.read(name, tags).samples)
}

func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return slices.Clone(m.read(name, tags).timings)
}

// Point summarizes one series.
type Point struct {
	Series  string  `json:"series"`
	Count   int64   `json:"count,omitempty"`
	Gauge   float64 `json:"gauge,omitempty"`
	Samples int     `json:"samples,omitempty"`
	Mean    float64 `json:"mean,omitempty"`
	MeanMS  float64 `json:"mean_ms,omitempty"`
}

// Snapshot summarizes every series, sorted by key.
func (m *InMemoryMetrics) Snapshot() []Point {
	m.mu.RLock()
	defer m.mu.RUnlock()

	points := make([]Point, 0, len(m.series))
	for key, s := range m.series {
		p := Point{Series: key, Count: s.count, Gauge: s.gauge}
		if n := len(s.samples); n > 0 {
			var sum float64
			for _, v := range s.samples {
				sum += v
			}
			p.Samples, p.Mean = n, sum/float64(n)
		}
		if n := len(s.timings); n > 0 {
			var sum time.Duration
			for _, d := range s.timings {
				sum += d
			}
			p.Samples += n
			p.MeanMS = float64(sum.Milliseconds()) / float64(n)
		}
		points = append(points, p)
	}
	slices.SortFunc(points, func(a, b Point) int { return strings.Compare(a.Series, b.Series) })
	return points
}

// seriesKey renders name{k=v,...} with tags sorted by key, so tag order at
// the call site does not split a series.
func seriesKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := slices.Clone(tags)
	slices.SortStableFunc(sorted, func(a, b Tag) int { return strings.Compare(a.Key, b.Key) })

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, t := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// Metric names.
const (
	MetricOperationTotal    = "perfboard.operation.total"
	MetricOperationDuration = "perfboard.operation.duration"
	MetricOperationErrors   = "perfboard.operation.errors"

	MetricTasksCreated   = "perfboard.tasks.created"
	MetricTasksClaimed   = "perfboard.tasks.claimed"
	MetricTasksCompleted = "perfboard.tasks.completed"
	MetricClaimConflicts = "perfboard.tasks.claim_conflicts"
	MetricScoreAwarded   = "perfboard.score.awarded"

	MetricEventsPublished    = "perfboard.events.published"
	MetricEventsFailed       = "perfboard.events.failed"
	MetricEventsDead         = "perfboard.events.dead"
	MetricEventsConsumed     = "perfboard.events.consumed"
	MetricOutboxLag          = "perfboard.outbox.lag_seconds"
	MetricBreakerStateChange = "perfboard.breaker.state_change"
)
