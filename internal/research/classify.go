// Package research gathers multi-source findings for an artifact topic.
package research

import (
	"regexp"

	"github.com/inkpipe/inkpipe/internal/sources"
)

// Category is the classification of a topic, used to pick a source ordering.
type Category string

const (
	CategoryTechnical Category = "technical"
	CategoryBusiness  Category = "business"
	CategoryCommunity Category = "community"
	CategoryBalanced  Category = "balanced"
)

// Keyword families are matched case-insensitively on word boundaries.
// Checks run in technical, business, community order and the first match wins.
var (
	technicalPattern = regexp.MustCompile(`(?i)\b(code|coding|software|programming|engineering|api|database|kubernetes|cloud|infrastructure|devops|architecture|algorithm|framework|backend|frontend|security|ml|ai)\b`)
	businessPattern  = regexp.MustCompile(`(?i)\b(marketing|sales|revenue|growth|strategy|saas|startup|funding|b2b|b2c|pricing|churn|market|brand|product|customer|roi)\b`)
	communityPattern = regexp.MustCompile(`(?i)\b(community|culture|remote|team|hiring|leadership|career|mentorship|diversity|wellness|productivity|habits)\b`)
)

// Classify maps a free-text topic to a category. The heuristic is a pure
// function so it can later be swapped for a model-based classifier.
func Classify(topic string) Category {
	switch {
	case technicalPattern.MatchString(topic):
		return CategoryTechnical
	case businessPattern.MatchString(topic):
		return CategoryBusiness
	case communityPattern.MatchString(topic):
		return CategoryCommunity
	default:
		return CategoryBalanced
	}
}

// PriorityOrder returns the full source-type preference order for a category.
// Callers fan out over a prefix of this order.
func PriorityOrder(category Category) []sources.SourceType {
	switch category {
	case CategoryTechnical:
		return []sources.SourceType{
			sources.SourceGitHub, sources.SourceStackOverflow, sources.SourceMedium,
			sources.SourceReddit, sources.SourceNews, sources.SourceYouTube,
			sources.SourceLinkedIn, sources.SourceSubstack,
		}
	case CategoryBusiness:
		return []sources.SourceType{
			sources.SourceLinkedIn, sources.SourceMedium, sources.SourceNews,
			sources.SourceSubstack, sources.SourceYouTube, sources.SourceReddit,
			sources.SourceGitHub, sources.SourceStackOverflow,
		}
	case CategoryCommunity:
		return []sources.SourceType{
			sources.SourceReddit, sources.SourceYouTube, sources.SourceSubstack,
			sources.SourceMedium, sources.SourceLinkedIn, sources.SourceNews,
			sources.SourceGitHub, sources.SourceStackOverflow,
		}
	default:
		return []sources.SourceType{
			sources.SourceMedium, sources.SourceLinkedIn, sources.SourceReddit,
			sources.SourceGitHub, sources.SourceNews, sources.SourceYouTube,
			sources.SourceSubstack, sources.SourceStackOverflow,
		}
	}
}
