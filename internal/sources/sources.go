// Package sources defines the external research source contract and its providers.
package sources

import (
	"context"
	"fmt"
)

// SourceType identifies a kind of research source.
type SourceType string

const (
	SourceLinkedIn      SourceType = "linkedin"
	SourceMedium        SourceType = "medium"
	SourceSubstack      SourceType = "substack"
	SourceReddit        SourceType = "reddit"
	SourceGitHub        SourceType = "github"
	SourceStackOverflow SourceType = "stackoverflow"
	SourceYouTube       SourceType = "youtube"
	SourceNews          SourceType = "news"
)

// AllSourceTypes returns every known source type.
func AllSourceTypes() []SourceType {
	return []SourceType{
		SourceLinkedIn, SourceMedium, SourceSubstack, SourceReddit,
		SourceGitHub, SourceStackOverflow, SourceYouTube, SourceNews,
	}
}

// ValidSourceType reports whether s names a known source type.
func ValidSourceType(s SourceType) bool {
	for _, known := range AllSourceTypes() {
		if s == known {
			return true
		}
	}
	return false
}

// Candidate is one raw result returned by a provider, before filtering.
type Candidate struct {
	SourceType     SourceType `json:"source_type"`
	SourceName     string     `json:"source_name"`
	SourceURL      string     `json:"source_url,omitempty"`
	Excerpt        string     `json:"excerpt"`
	RelevanceScore float64    `json:"relevance_score"`
}

// Provider queries one source type for candidate results. Each call may fail
// independently; callers decide how failures affect the overall run. No retry
// contract is assumed.
type Provider interface {
	Query(ctx context.Context, sourceType SourceType, topic string, limit int) ([]Candidate, error)
}

// SelectProvider builds the provider named by configuration. "http" gets an
// HTTP provider over the given endpoint templates (keys are source type
// names); anything else gets the simulated provider.
func SelectProvider(name string, endpoints map[string]string) Provider {
	if name != "http" {
		return NewSimulatedProvider()
	}
	templates := make(map[SourceType]string, len(endpoints))
	for typeName, template := range endpoints {
		templates[SourceType(typeName)] = template
	}
	return NewHTTPProvider(nil, templates)
}

// QueryError wraps a provider failure with the source that produced it.
type QueryError struct {
	SourceType SourceType
	Cause      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("querying %s: %v", e.SourceType, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}
