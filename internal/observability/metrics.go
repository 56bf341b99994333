package observability

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// defaultLatencyWindow bounds the sample window used for percentile queries
	defaultLatencyWindow = time.Hour
	// userWindow bounds the distinct-user count
	userWindow = 24 * time.Hour
)

type latencySample struct {
	at       time.Time
	duration time.Duration
}

type endpointStats struct {
	samples  []latencySample
	total    int64
	failures int64
}

// LatencySummary reports percentile latencies over the trailing window
type LatencySummary struct {
	Count int           `json:"count"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
}

// Collector tracks request latencies, error rates, active users, and daily
// pipeline activity. All reads reflect the trailing windows, not all time.
type Collector struct {
	mu            sync.Mutex
	latencyWindow time.Duration
	endpoints     map[string]*endpointStats
	userSeen      map[string]time.Time

	pipelineDay   string
	pipelineCount int64

	now func() time.Time

	requestTotal    *prometheus.CounterVec
	requestFailures *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	pipelineRuns    prometheus.Counter
	registry        *prometheus.Registry
}

// NewCollector creates a collector with its own prometheus registry. A
// non-positive latencyWindow gets the one-hour default.
func NewCollector(latencyWindow time.Duration) *Collector {
	if latencyWindow <= 0 {
		latencyWindow = defaultLatencyWindow
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Collector{
		latencyWindow: latencyWindow,
		endpoints:     make(map[string]*endpointStats),
		userSeen:      make(map[string]time.Time),
		now:           time.Now,
		registry:      registry,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpipe_requests_total",
			Help: "Total requests handled, by endpoint.",
		}, []string{"endpoint"}),
		requestFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpipe_request_failures_total",
			Help: "Requests that ended in an error, by endpoint.",
		}, []string{"endpoint"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkpipe_request_duration_seconds",
			Help:    "Request duration in seconds, by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		pipelineRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "inkpipe_pipeline_runs_total",
			Help: "Pipeline stage executions started.",
		}),
	}
}

// RecordRequest records one handled request for an endpoint.
func (c *Collector) RecordRequest(endpoint string, duration time.Duration, failed bool) {
	c.requestTotal.WithLabelValues(endpoint).Inc()
	c.requestLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
	if failed {
		c.requestFailures.WithLabelValues(endpoint).Inc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.endpoints[endpoint]
	if !ok {
		stats = &endpointStats{}
		c.endpoints[endpoint] = stats
	}
	stats.total++
	if failed {
		stats.failures++
	}
	stats.samples = append(stats.samples, latencySample{at: c.now(), duration: duration})
}

// RecordUser marks a user as active now.
func (c *Collector) RecordUser(userID string) {
	if userID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userSeen[userID] = c.now()
}

// RecordPipelineRun counts one pipeline stage execution against today's total.
func (c *Collector) RecordPipelineRun() {
	c.pipelineRuns.Inc()
	c.mu.Lock()
	defer c.mu.Unlock()
	day := c.now().Format("2006-01-02")
	if day != c.pipelineDay {
		c.pipelineDay = day
		c.pipelineCount = 0
	}
	c.pipelineCount++
}

// Latency reports p50/p95/p99 for an endpoint over the trailing window.
// Percentiles come from a full sort of the retained samples.
func (c *Collector) Latency(endpoint string) LatencySummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.endpoints[endpoint]
	if !ok {
		return LatencySummary{}
	}
	c.pruneLocked(stats)
	if len(stats.samples) == 0 {
		return LatencySummary{}
	}

	durations := make([]time.Duration, len(stats.samples))
	for i, s := range stats.samples {
		durations[i] = s.duration
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return LatencySummary{
		Count: len(durations),
		P50:   percentile(durations, 0.50),
		P95:   percentile(durations, 0.95),
		P99:   percentile(durations, 0.99),
	}
}

// ErrorRate returns failures/total for an endpoint, all time. Zero traffic is 0.
func (c *Collector) ErrorRate(endpoint string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.endpoints[endpoint]
	if !ok || stats.total == 0 {
		return 0
	}
	return float64(stats.failures) / float64(stats.total)
}

// ActiveUsers counts distinct users seen in the trailing 24 hours.
func (c *Collector) ActiveUsers() int {
	cutoff := c.now().Add(-userWindow)
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for id, seen := range c.userSeen {
		if seen.Before(cutoff) {
			delete(c.userSeen, id)
			continue
		}
		count++
	}
	return count
}

// PipelineRunsToday returns pipeline stage executions for the current calendar day.
func (c *Collector) PipelineRunsToday() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipelineDay != c.now().Format("2006-01-02") {
		return 0
	}
	return c.pipelineCount
}

// Handler exposes the prometheus scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// pruneLocked drops latency samples older than the window. Caller holds mu.
func (c *Collector) pruneLocked(stats *endpointStats) {
	cutoff := c.now().Add(-c.latencyWindow)
	keep := stats.samples[:0]
	for _, s := range stats.samples {
		if !s.at.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	stats.samples = keep
}

// percentile indexes into sorted durations; p is in (0,1].
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted))*p+0.5) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
