package sources

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
)

// SimulatedProvider returns deterministic candidates derived from the topic
// and source type. It stands in for a real search provider in development and
// tests; relevance scores are stable for a given (sourceType, topic, index).
type SimulatedProvider struct {
	mu       sync.Mutex
	failures map[SourceType]error
}

// NewSimulatedProvider creates a simulated provider with no injected failures.
func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{failures: make(map[SourceType]error)}
}

// FailWith makes subsequent queries for the source type return err.
func (p *SimulatedProvider) FailWith(sourceType SourceType, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[sourceType] = err
}

// ClearFailures removes all injected failures.
func (p *SimulatedProvider) ClearFailures() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = make(map[SourceType]error)
}

// Query returns up to limit deterministic candidates for the source and topic.
func (p *SimulatedProvider) Query(ctx context.Context, sourceType SourceType, topic string, limit int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	injected := p.failures[sourceType]
	p.mu.Unlock()
	if injected != nil {
		return nil, &QueryError{SourceType: sourceType, Cause: injected}
	}

	if !ValidSourceType(sourceType) {
		return nil, &QueryError{SourceType: sourceType, Cause: fmt.Errorf("unknown source type")}
	}
	if limit <= 0 {
		return nil, nil
	}

	candidates := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		seed := hashSeed(string(sourceType), topic, i)
		candidates = append(candidates, Candidate{
			SourceType:     sourceType,
			SourceName:     fmt.Sprintf("%s result %d for %q", sourceType, i+1, truncateTopic(topic)),
			SourceURL:      fmt.Sprintf("https://%s.example.com/%08x", sourceType, seed),
			Excerpt:        simulatedExcerpt(sourceType, topic, i),
			RelevanceScore: simulatedRelevance(seed),
		})
	}
	return candidates, nil
}

// simulatedRelevance maps a seed onto [0.40, 0.98] so that some candidates
// land below the filtering threshold and some above.
func simulatedRelevance(seed uint32) float64 {
	return 0.40 + float64(seed%59)/100.0
}

func simulatedExcerpt(sourceType SourceType, topic string, i int) string {
	return fmt.Sprintf("Discussion of %s from a %s perspective (excerpt %d).", truncateTopic(topic), sourceType, i+1)
}

func hashSeed(parts ...any) uint32 {
	h := fnv.New32a()
	for _, part := range parts {
		fmt.Fprintf(h, "%v|", part)
	}
	return h.Sum32()
}

func truncateTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if len(topic) > 60 {
		return topic[:57] + "..."
	}
	return topic
}
