//go:build windows

package hidden

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Strategy names how hidden files are made visible on this platform.
const Strategy = StrategyAttribute

// VisibleName returns name unchanged; Windows hides files by attribute.
func VisibleName(name string) string {
	return name
}

// Reveal clears FILE_ATTRIBUTE_HIDDEN on path and reports whether it was set.
func Reveal(path string) (bool, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, fmt.Errorf("encode path: %w", err)
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false, fmt.Errorf("get file attributes: %w", err)
	}
	if attrs&windows.FILE_ATTRIBUTE_HIDDEN == 0 {
		return false, nil
	}
	if err := windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_HIDDEN); err != nil {
		return false, fmt.Errorf("clear hidden attribute: %w", err)
	}
	return true, nil
}
