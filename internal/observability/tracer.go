// Package observability provides in-process request tracing and service metrics.
package observability

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// TraceHeader carries the trace id across service boundaries
const TraceHeader = "X-Trace-Id"

// SpanStatus is the lifecycle state of a span
type SpanStatus string

const (
	SpanRunning   SpanStatus = "running"
	SpanCompleted SpanStatus = "completed"
	SpanFailed    SpanStatus = "failed"
)

// Span records one traced operation
type Span struct {
	ID        string
	TraceID   string
	Operation string
	Status    SpanStatus
	Error     string
	Attrs     map[string]string
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns elapsed time for finished spans and time-so-far for running ones
func (s *Span) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Tracer holds active and recently finished spans in memory. Spans older
// than maxAge are dropped by a background sweep so the map stays bounded.
type Tracer struct {
	mu     sync.Mutex
	spans  map[string]*Span
	maxAge time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewTracer creates a tracer and starts its sweep loop.
func NewTracer(maxAge, sweepInterval time.Duration) *Tracer {
	t := &Tracer{
		spans:  make(map[string]*Span),
		maxAge: maxAge,
		stop:   make(chan struct{}),
	}
	go t.sweepLoop(sweepInterval)
	return t
}

// Stop terminates the sweep loop
func (t *Tracer) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// NewTraceID generates a trace id from the current timestamp and random bytes.
func NewTraceID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable; fall back to time-only
		return fmt.Sprintf("%d-000000000000", time.Now().UnixNano())
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), hex.EncodeToString(buf))
}

// StartSpan opens a span under the given trace. An empty traceID starts a new trace.
func (t *Tracer) StartSpan(traceID, operation string, attrs map[string]string) *Span {
	if traceID == "" {
		traceID = NewTraceID()
	}
	span := &Span{
		ID:        NewTraceID(),
		TraceID:   traceID,
		Operation: operation,
		Status:    SpanRunning,
		Attrs:     attrs,
		StartedAt: time.Now(),
	}
	t.mu.Lock()
	t.spans[span.ID] = span
	t.mu.Unlock()
	return span
}

// CompleteSpan marks a span as finished successfully.
func (t *Tracer) CompleteSpan(spanID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if span, ok := t.spans[spanID]; ok && span.Status == SpanRunning {
		span.Status = SpanCompleted
		span.EndedAt = time.Now()
	}
}

// FailSpan marks a span as failed with the given error.
func (t *Tracer) FailSpan(spanID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	span, ok := t.spans[spanID]
	if !ok || span.Status != SpanRunning {
		return
	}
	span.Status = SpanFailed
	span.EndedAt = time.Now()
	if err != nil {
		span.Error = err.Error()
	}
}

// GetSpan returns the span by id, or nil if unknown or already swept.
func (t *Tracer) GetSpan(spanID string) *Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	span, ok := t.spans[spanID]
	if !ok {
		return nil
	}
	copied := *span
	return &copied
}

// TraceSpans returns every span recorded under a trace id, oldest first.
func (t *Tracer) TraceSpans(traceID string) []*Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Span
	for _, span := range t.spans {
		if span.TraceID == traceID {
			copied := *span
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// ActiveCount returns the number of spans currently held
func (t *Tracer) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

// Sweep removes spans that started more than maxAge ago, running or not.
// Returns the number removed.
func (t *Tracer) Sweep() int {
	cutoff := time.Now().Add(-t.maxAge)
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, span := range t.spans {
		if span.StartedAt.Before(cutoff) {
			delete(t.spans, id)
			removed++
		}
	}
	return removed
}

func (t *Tracer) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.Sweep()
		case <-t.stop:
			return
		}
	}
}

// TraceIDFromRequest extracts the propagated trace id, minting one if absent.
func TraceIDFromRequest(r *http.Request) string {
	if id := r.Header.Get(TraceHeader); id != "" {
		return id
	}
	return NewTraceID()
}

// InjectTraceID sets the trace header on an outbound request or response.
func InjectTraceID(h http.Header, traceID string) {
	h.Set(TraceHeader, traceID)
}
