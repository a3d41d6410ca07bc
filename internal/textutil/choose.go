package textutil

// Choose returns yes when cond holds and no otherwise. The manifest uses it to
// spell booleans as True and False.
func Choose[T any](cond bool, yes, no T) T {
	if cond {
		return yes
	}
	return no
}

// FirstNonEmpty returns the first value that is not empty, or "" when all are.
// Name table fallbacks (typographic family, then legacy family) go through it.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
