package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer maps spaces and filesystem-unsafe characters to underscores.
var fileNameReplacer = strings.NewReplacer(
	" ", "_",
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

var underscoreRuns = regexp.MustCompile(`_+`)

// UnnamedFile is returned by SanitizeFileName when nothing usable remains.
const UnnamedFile = "unnamed"

// SanitizeFileName makes name safe as a single path segment on every
// supported platform. Spaces and the characters < > : " / \ | ? * become
// underscores, runs of underscores collapse to one, and leading or trailing
// spaces, dots, and underscores are stripped. An empty result becomes
// "unnamed".
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	name = fileNameReplacer.Replace(name)
	name = underscoreRuns.ReplaceAllString(name, "_")
	name = strings.Trim(name, " ._")
	if name == "" {
		return UnnamedFile
	}
	return name
}

// asciiFold decomposes to NFKD, drops combining marks, and then drops
// whatever is still outside printable ASCII.
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII || (unicode.IsControl(r) && !unicode.IsSpace(r))
	})),
)

// CleanName normalizes a metadata string read from a font's name table:
// accents are folded to their ASCII base letters, control characters such as
// NUL padding and anything else outside ASCII are removed, and whitespace runs
// collapse to a single space.
func CleanName(value string) string {
	if value == "" {
		return ""
	}
	cleaned, _, err := transform.String(asciiFold, value)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(cleaned), " ")
}
