// Package fetch - platform.go provides platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known publishing platform.
type Platform string

const (
	// PlatformMedium is the Medium blogging platform
	PlatformMedium Platform = "medium"
	// PlatformSubstack is the Substack newsletter platform
	PlatformSubstack Platform = "substack"
	// PlatformReddit is the Reddit discussion platform
	PlatformReddit Platform = "reddit"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the publishing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	// Medium patterns, including custom publication subdomains
	if strings.Contains(host, "medium.com") {
		return PlatformMedium
	}

	// Substack patterns
	if strings.Contains(host, "substack.com") {
		return PlatformSubstack
	}

	// Reddit patterns
	if strings.Contains(host, "reddit.com") ||
		strings.Contains(host, "redd.it") {
		return PlatformReddit
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformMedium:
		return []string{
			"article",
			".meteredContent",
			".postArticle-content",
			"section",
			"main",
		}
	case PlatformSubstack:
		return []string{
			".available-content",
			".post-content",
			".body.markup",
			"article",
			"main",
		}
	case PlatformReddit:
		return []string{
			"[data-testid='post-container']",
			"shreddit-post",
			".Post",
			".thing .usertext-body",
			"main",
		}
	default:
		return ArticleSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	// Common noise selectors for all platforms
	common := []string{
		// Subscription and paywall prompts
		".paywall",
		".subscribe-prompt",
		".subscription-widget",
		".meteredContent-modal",

		// Social and share buttons
		".social-share",
		".share-buttons",
		".social-links",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
		".gdpr-notice",

		// Generic navigation already handled in fetch.go
	}

	// Platform-specific noise selectors
	switch platform {
	case PlatformMedium:
		return append(common,
			".js-postMetaLockup",
			".highlightMenu",
			".js-stickyFooter",
		)
	case PlatformSubstack:
		return append(common,
			".subscribe-footer",
			".comments-section",
			".post-footer",
		)
	case PlatformReddit:
		return append(common,
			".promotedlink",
			"[data-testid='frontpage-sidebar']",
			".Comment-actions",
		)
	default:
		return common
	}
}
