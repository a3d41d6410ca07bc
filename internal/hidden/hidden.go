// Package hidden normalizes hidden-file markers on files copied out of the
// font cache. Unix-like systems hide dot-prefixed names, so the copy is given
// a visible name; Windows hides files through an attribute, which is cleared
// on the copy instead.
package hidden

import "strings"

const (
	// StrategyRename strips the leading dot from hidden names.
	StrategyRename = "rename"
	// StrategyAttribute clears the filesystem hidden attribute.
	StrategyAttribute = "attribute"
)

// IsDotName reports whether name is hidden by the dot-prefix convention.
func IsDotName(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

func stripDot(name string) string {
	if IsDotName(name) {
		return name[1:]
	}
	return name
}
