package generation

import (
	"iter"
	"path"
	"strings"

	"combitest/internal/domain"
)

// Filter keeps combinations with at least one "dimension:value" pair
// matching pattern. An empty pattern keeps everything.
// Supports patterns like "Format:json", "Format:*" or "*hierarch*".
func Filter(seq iter.Seq[domain.Combination], pattern string) iter.Seq[domain.Combination] {
	if pattern == "" {
		return seq
	}
	return func(yield func(domain.Combination) bool) {
		for c := range seq {
			if !matchesAny(c, pattern) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func matchesAny(c domain.Combination, pattern string) bool {
	for _, p := range c.Pairs() {
		if MatchPair(p.String(), pattern) {
			return true
		}
	}
	return false
}

// MatchPair reports whether a "dimension:value" string matches pattern.
func MatchPair(pair, pattern string) bool {
	if matched, err := path.Match(pattern, pair); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") {
		// Unanchored: each wildcard-separated part must appear in order.
		rest := pair
		nonEmpty := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			nonEmpty = true
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
		}
		return nonEmpty
	}

	if !strings.Contains(pattern, "?") {
		return strings.Contains(pair, pattern)
	}
	return false
}
