package metadata

import (
	"strings"
	"unicode"
)

// suffixes are stripped repeatedly from the end of a filename before it is
// split into keywords, e.g. "cpd.release.multicore.appimage" -> "cpd".
var suffixes = []string{
	".appimage", ".cfg", ".multicore", ".release", ".debug",
	".hs_fs", ".hs", ".rig", ".out", ".bin", ".xer5f",
}

var stopWords = map[string]bool{
	"demo":     true,
	"cfg":      true,
	"appimage": true,
	"release":  true,
	"debug":    true,
	"system":   true,
}

// StripSuffixes removes the known build and container suffix chain.
func StripSuffixes(filename string) string {
	name := strings.ToLower(filename)
	for {
		trimmed := false
		for _, s := range suffixes {
			if strings.HasSuffix(name, s) {
				name = strings.TrimSuffix(name, s)
				trimmed = true
			}
		}
		if !trimmed {
			return name
		}
	}
}

// Keywords tokenizes a filename for overlap scoring. Tokens are lowercased,
// split on '_', '-', '.' and spaces, and short, numeric and stop-word tokens
// are dropped. Order of first appearance is kept.
func Keywords(filename string) []string {
	base := StripSuffixes(filename)
	fields := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) < 3 || isNumeric(f) || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
