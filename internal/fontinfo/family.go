package fontinfo

import (
	"regexp"
	"strings"
)

// UnknownFamily names fonts whose family reduces to nothing.
const UnknownFamily = "Unknown"

// FamilyReducer strips weight and style words from family names.
type FamilyReducer struct {
	pattern *regexp.Regexp
}

// NewFamilyReducer matches each suffix as a whole word, ignoring case.
func NewFamilyReducer(suffixes []string) *FamilyReducer {
	words := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.TrimSpace(s); s != "" {
			words = append(words, regexp.QuoteMeta(s))
		}
	}
	if len(words) == 0 {
		return &FamilyReducer{}
	}
	return &FamilyReducer{pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)}
}

// BaseFamily removes suffix words from family and collapses whitespace.
func (r *FamilyReducer) BaseFamily(family string) string {
	if r != nil && r.pattern != nil {
		family = r.pattern.ReplaceAllString(family, " ")
	}
	family = strings.Join(strings.Fields(family), " ")
	if family == "" {
		return UnknownFamily
	}
	return family
}
