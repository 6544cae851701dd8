package utils

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// TokenSet finds lowercase substrings in a single pass over the input.
type TokenSet struct {
	tokens  []string
	matcher *ahocorasick.Matcher
}

func NewTokenSet(tokens ...string) *TokenSet {
	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" {
			normalized = append(normalized, token)
		}
	}
	return &TokenSet{tokens: normalized, matcher: ahocorasick.NewStringMatcher(normalized)}
}

// ContainsAny reports whether s holds at least one token. s must already be
// lowercased.
func (ts *TokenSet) ContainsAny(s string) bool {
	if ts == nil || len(ts.tokens) == 0 {
		return false
	}
	return ts.matcher.Contains([]byte(s))
}

// Matches returns the tokens found in s, in declaration order.
func (ts *TokenSet) Matches(s string) []string {
	if ts == nil || len(ts.tokens) == 0 {
		return nil
	}
	hits := ts.matcher.MatchThreadSafe([]byte(s))
	if len(hits) == 0 {
		return nil
	}
	found := make(map[int]bool, len(hits))
	for _, idx := range hits {
		if idx >= 0 && idx < len(ts.tokens) {
			found[idx] = true
		}
	}
	out := make([]string, 0, len(found))
	for i, token := range ts.tokens {
		if found[i] {
			out = append(out, token)
		}
	}
	return out
}
