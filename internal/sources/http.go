package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/inkpipe/inkpipe/internal/fetch"
)

// HTTPProvider queries real source endpoints over HTTP and extracts
// candidates from the returned HTML. It is the intended replacement for the
// simulated provider once per-source search endpoints are configured.
type HTTPProvider struct {
	fetcher   *fetch.CachedFetcher
	endpoints map[SourceType]string // search URL templates with a %s topic slot
}

// NewHTTPProvider creates an HTTP provider over the given endpoint templates.
// A nil fetcher gets the default cached fetcher.
func NewHTTPProvider(fetcher *fetch.CachedFetcher, endpoints map[SourceType]string) *HTTPProvider {
	if fetcher == nil {
		fetcher = fetch.NewCachedFetcher(nil)
	}
	return &HTTPProvider{fetcher: fetcher, endpoints: endpoints}
}

// Query fetches the source's search endpoint for the topic and extracts up to
// limit candidates from result links.
func (p *HTTPProvider) Query(ctx context.Context, sourceType SourceType, topic string, limit int) ([]Candidate, error) {
	template, ok := p.endpoints[sourceType]
	if !ok {
		return nil, &QueryError{SourceType: sourceType, Cause: fmt.Errorf("no endpoint configured")}
	}
	if limit <= 0 {
		return nil, nil
	}

	searchURL := fmt.Sprintf(template, url.QueryEscape(topic))
	result, err := p.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, &QueryError{SourceType: sourceType, Cause: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return nil, &QueryError{SourceType: sourceType, Cause: fmt.Errorf("parsing response: %w", err)}
	}

	platform := fetch.DetectPlatform(searchURL)
	doc.Find(strings.Join(fetch.PlatformNoiseSelectors(platform), ", ")).Remove()

	var candidates []Candidate
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(candidates) >= limit {
			return false
		}
		href, _ := sel.Attr("href")
		title := strings.TrimSpace(sel.Text())
		if title == "" || !strings.HasPrefix(href, "http") {
			return true
		}
		excerpt := nearbyExcerpt(sel)
		if excerpt == "" {
			excerpt = title
		}
		candidates = append(candidates, Candidate{
			SourceType:     sourceType,
			SourceName:     title,
			SourceURL:      href,
			Excerpt:        excerpt,
			RelevanceScore: lexicalRelevance(topic, title+" "+excerpt),
		})
		return true
	})

	return candidates, nil
}

// nearbyExcerpt pulls descriptive text from the link's parent block.
func nearbyExcerpt(sel *goquery.Selection) string {
	parent := sel.Closest("article, li, .result, .search-result, div")
	if parent.Length() == 0 {
		return ""
	}
	text := strings.TrimSpace(parent.First().Text())
	if len(text) > 280 {
		text = text[:277] + "..."
	}
	return text
}

// lexicalRelevance scores by topic-term overlap. A stand-in for real search
// ranking; terms are matched case-insensitively.
func lexicalRelevance(topic, text string) float64 {
	terms := strings.Fields(strings.ToLower(topic))
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
