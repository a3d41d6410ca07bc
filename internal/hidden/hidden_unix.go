//go:build !windows

package hidden

// Strategy names how hidden files are made visible on this platform.
const Strategy = StrategyRename

// VisibleName returns the name a copied entry should use. A single leading dot
// is removed.
func VisibleName(name string) string {
	return stripDot(name)
}

// Reveal is a no-op here; visibility is handled by VisibleName.
func Reveal(string) (bool, error) {
	return false, nil
}
