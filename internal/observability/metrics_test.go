package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLatencyPercentiles(t *testing.T) {
	c := NewCollector(0)
	for i := 1; i <= 100; i++ {
		c.RecordRequest("/v1/chat", time.Duration(i)*time.Millisecond, false)
	}

	summary := c.Latency("/v1/chat")
	if summary.Count != 100 {
		t.Fatalf("count = %d, want 100", summary.Count)
	}
	if summary.P50 != 50*time.Millisecond {
		t.Errorf("p50 = %v, want 50ms", summary.P50)
	}
	if summary.P95 != 95*time.Millisecond {
		t.Errorf("p95 = %v, want 95ms", summary.P95)
	}
	if summary.P99 != 99*time.Millisecond {
		t.Errorf("p99 = %v, want 99ms", summary.P99)
	}
}

func TestLatencyIgnoresSamplesOutsideWindow(t *testing.T) {
	c := NewCollector(0)
	base := time.Now()

	c.now = func() time.Time { return base.Add(-2 * time.Hour) }
	c.RecordRequest("/v1/chat", time.Second, false)

	c.now = func() time.Time { return base }
	c.RecordRequest("/v1/chat", 10*time.Millisecond, false)

	summary := c.Latency("/v1/chat")
	if summary.Count != 1 {
		t.Fatalf("count = %d, want 1 after pruning", summary.Count)
	}
	if summary.P99 != 10*time.Millisecond {
		t.Errorf("p99 = %v, want 10ms", summary.P99)
	}
}

func TestLatencyWindowIsConfigurable(t *testing.T) {
	c := NewCollector(10 * time.Minute)
	base := time.Now()

	c.now = func() time.Time { return base.Add(-30 * time.Minute) }
	c.RecordRequest("/v1/chat", time.Second, false)

	c.now = func() time.Time { return base }
	c.RecordRequest("/v1/chat", 10*time.Millisecond, false)

	summary := c.Latency("/v1/chat")
	if summary.Count != 1 {
		t.Fatalf("count = %d, want 1 with a 10m window", summary.Count)
	}
}

func TestLatencyUnknownEndpoint(t *testing.T) {
	c := NewCollector(0)
	if got := c.Latency("/nope"); got.Count != 0 || got.P50 != 0 {
		t.Errorf("got %+v, want zero summary", got)
	}
}

func TestErrorRate(t *testing.T) {
	c := NewCollector(0)
	if got := c.ErrorRate("/v1/chat"); got != 0 {
		t.Errorf("rate with no traffic = %f, want 0", got)
	}

	c.RecordRequest("/v1/chat", time.Millisecond, false)
	c.RecordRequest("/v1/chat", time.Millisecond, true)
	c.RecordRequest("/v1/chat", time.Millisecond, false)
	c.RecordRequest("/v1/chat", time.Millisecond, true)

	if got := c.ErrorRate("/v1/chat"); got != 0.5 {
		t.Errorf("rate = %f, want 0.5", got)
	}
}

func TestActiveUsersWindow(t *testing.T) {
	c := NewCollector(0)
	base := time.Now()

	c.now = func() time.Time { return base.Add(-25 * time.Hour) }
	c.RecordUser("stale-user")

	c.now = func() time.Time { return base }
	c.RecordUser("user-a")
	c.RecordUser("user-b")
	c.RecordUser("user-a") // duplicate

	if got := c.ActiveUsers(); got != 2 {
		t.Errorf("active users = %d, want 2", got)
	}
}

func TestRecordUserIgnoresEmpty(t *testing.T) {
	c := NewCollector(0)
	c.RecordUser("")
	if got := c.ActiveUsers(); got != 0 {
		t.Errorf("active users = %d, want 0", got)
	}
}

func TestPipelineCounterResetsOnDateRollover(t *testing.T) {
	c := NewCollector(0)
	day1 := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC)

	c.now = func() time.Time { return day1 }
	c.RecordPipelineRun()
	c.RecordPipelineRun()
	if got := c.PipelineRunsToday(); got != 2 {
		t.Fatalf("day1 count = %d, want 2", got)
	}

	c.now = func() time.Time { return day2 }
	if got := c.PipelineRunsToday(); got != 0 {
		t.Errorf("count after rollover = %d, want 0 before any run", got)
	}
	c.RecordPipelineRun()
	if got := c.PipelineRunsToday(); got != 1 {
		t.Errorf("day2 count = %d, want 1", got)
	}
}

func TestPrometheusHandlerServesMetrics(t *testing.T) {
	c := NewCollector(0)
	c.RecordRequest("/v1/chat", 5*time.Millisecond, false)
	c.RecordPipelineRun()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"inkpipe_requests_total", "inkpipe_pipeline_runs_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape output missing %s", name)
		}
	}
}
