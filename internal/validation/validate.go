package validation

import (
	"regexp"
	"strings"
)

// Field names with dedicated length limits
const (
	FieldMessage = "message"
	FieldTopic   = "topic"
	FieldTitle   = "title"
	FieldAnswer  = "answer"
	FieldBrief   = "brief"
)

// fieldMaxLengths maps each known field to its maximum length in characters.
// Unknown fields fall back to defaultMaxLength.
var fieldMaxLengths = map[string]int{
	FieldMessage: 4000,
	FieldTopic:   500,
	FieldTitle:   200,
	FieldAnswer:  8000,
	FieldBrief:   16000,
}

const defaultMaxLength = 2000

// suspiciousPatterns are heuristics for prompt-injection and jailbreak
// phrasing, hidden characters, and encoded payloads. A match anywhere in the
// input rejects the whole string. Callers never learn which pattern fired.
var suspiciousPatterns = []*regexp.Regexp{
	// Instruction-override phrasing
	regexp.MustCompile(`(?i)ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions|prompts|context|messages)`),
	regexp.MustCompile(`(?i)disregard\s+(your|the|all|any)\s+\w*\s*(instructions|rules|guidelines|constraints)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all)\s+(you|above|before)`),
	regexp.MustCompile(`(?i)\bnew\s+instructions\s*:`),
	// Persona and jailbreak framing
	regexp.MustCompile(`(?i)\byou\s+are\s+now\b.{0,40}\b(unrestricted|unfiltered|jailbroken|dan)\b`),
	regexp.MustCompile(`(?i)\bdo\s+anything\s+now\b`),
	regexp.MustCompile(`(?i)pretend\s+(you\s+are|to\s+be)\s+(an?\s+)?(unrestricted|unfiltered|different)`),
	regexp.MustCompile(`(?i)act\s+as\s+(if\s+you\s+have\s+)?no\s+(restrictions|rules|filters)`),
	// System-prompt probing
	regexp.MustCompile(`(?i)(reveal|print|repeat|show)\s+(your|the)\s+(system|hidden|initial|original)\s+(prompt|instructions|message)`),
	regexp.MustCompile(`(?i)\bsystem\s+prompt\b`),
	// Chat-template control tokens
	regexp.MustCompile(`<\|im_start\|>|<\|im_end\|>|<\|system\|>|\[INST\]|\[/INST\]`),
	// Hidden characters
	regexp.MustCompile(`[\x{200B}-\x{200F}\x{202A}-\x{202E}\x{2060}\x{FEFF}]`),
	regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]"),
	// Encoded payloads
	regexp.MustCompile(`[A-Za-z0-9+/]{60,}={0,2}`),
	regexp.MustCompile(`(?i)data:[a-z0-9/+.-]+;base64,`),
	regexp.MustCompile(`(?:\\x[0-9a-fA-F]{2}){8,}`),
	regexp.MustCompile(`(?:\\u[0-9a-fA-F]{4}){6,}`),
}

// strippable characters removed during sanitization
var (
	hiddenChars    = regexp.MustCompile(`[\x{200B}-\x{200F}\x{202A}-\x{202E}\x{2060}\x{FEFF}]` + "|[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Check validates one user-supplied string for the named field. It rejects
// empty input, over-length input, and anything matching an adversarial
// heuristic, in that order. Nothing is mutated; use Sanitize on accepted
// input before passing it downstream.
func Check(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &EmptyError{Field: field}
	}

	max, ok := fieldMaxLengths[field]
	if !ok {
		max = defaultMaxLength
	}
	if len(value) > max {
		return &LengthError{Field: field, Length: len(value), Max: max}
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(value) {
			return &SecurityError{Field: field}
		}
	}

	return nil
}

// Sanitize strips hidden/control characters and collapses whitespace runs.
// Call only on input that has already passed Check.
func Sanitize(value string) string {
	value = hiddenChars.ReplaceAllString(value, "")
	value = whitespaceRuns.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// CheckAndSanitize validates then sanitizes in one step
func CheckAndSanitize(field, value string) (string, error) {
	if err := Check(field, value); err != nil {
		return "", err
	}
	return Sanitize(value), nil
}
