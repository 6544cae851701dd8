package utils

import (
	"path"
	"regexp"

	"sdkmatch/logger"
)

// PatternMatcher applies user include/exclude patterns. Each pattern is
// tried as a glob against the filename and as a regular expression against
// the '/'-separated path.
type PatternMatcher struct {
	includeGlobs []string
	includeRegex []*regexp.Regexp
	excludeGlobs []string
	excludeRegex []*regexp.Regexp
}

func NewPatternMatcher(includePatterns, excludePatterns []string) *PatternMatcher {
	return &PatternMatcher{
		includeGlobs: append([]string(nil), includePatterns...),
		includeRegex: compileRegex(includePatterns),
		excludeGlobs: append([]string(nil), excludePatterns...),
		excludeRegex: compileRegex(excludePatterns),
	}
}

func (m *PatternMatcher) ShouldInclude(filePath string) bool {
	if m == nil {
		return true
	}
	return m.Included(filePath) && !m.Excluded(filePath)
}

// Included reports whether filePath passes the include patterns. With no
// include patterns every path passes.
func (m *PatternMatcher) Included(filePath string) bool {
	if m == nil || (len(m.includeGlobs) == 0 && len(m.includeRegex) == 0) {
		return true
	}
	return m.matches(filePath, m.includeGlobs, m.includeRegex)
}

func (m *PatternMatcher) Excluded(filePath string) bool {
	if m == nil || (len(m.excludeGlobs) == 0 && len(m.excludeRegex) == 0) {
		return false
	}
	return m.matches(filePath, m.excludeGlobs, m.excludeRegex)
}

func (m *PatternMatcher) matches(filePath string, globs []string, regexes []*regexp.Regexp) bool {
	slashed := SlashLower(filePath)
	base := path.Base(slashed)
	for _, pattern := range globs {
		if matched, _ := path.Match(SlashLower(pattern), base); matched {
			return true
		}
	}
	for _, re := range regexes {
		if re.MatchString(slashed) {
			return true
		}
	}
	return false
}

func compileRegex(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			logger.Debugf("Pattern %q is not a regular expression, using it as a glob only", pattern)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}
