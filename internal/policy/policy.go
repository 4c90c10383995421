package policy

import (
	"fmt"
	"regexp"
)

// DefaultBlockedPatterns are the built-in sensitive-content categories:
// credential material, payment cards and national identifiers. Operators
// extend the list from configuration, never by editing this file.
var DefaultBlockedPatterns = []string{
	`password[s]?`,
	`credit.?card`,
	`\bssn\b`,
	`social.?security`,
	`\b\d{3}-\d{2}-\d{4}\b`,
}

// ContentPolicy is a pure predicate over text. It holds the compiled
// blocked-pattern set and is immutable after construction, so a single
// instance is safe for unsynchronized concurrent use.
type ContentPolicy struct {
	blocked []*regexp.Regexp
}

// New compiles the default patterns plus any extra patterns from
// configuration. Every pattern is matched case-insensitively.
func New(extra []string) (*ContentPolicy, error) {
	patterns := make([]string, 0, len(DefaultBlockedPatterns)+len(extra))
	patterns = append(patterns, DefaultBlockedPatterns...)
	patterns = append(patterns, extra...)

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}

	return &ContentPolicy{blocked: compiled}, nil
}

// Safe reports whether text matches none of the blocked patterns. It
// returns false on the first match. Callers apply it independently at
// every boundary; upstream filtering is never assumed.
func (p *ContentPolicy) Safe(text string) bool {
	for _, re := range p.blocked {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}
