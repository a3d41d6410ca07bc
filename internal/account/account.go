// Package account maps an OS account name to the Adobe font cache and the
// Desktop folder that receives the archive.
package account

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
)

// CancelWord aborts the username prompt when entered in any letter case.
const CancelWord = "cancel"

// ErrUnsupportedOS is returned when no cache location is known for the platform.
var ErrUnsupportedOS = errors.New("unsupported operating system for the livetype cache")

// Locations are the per-account directories a run reads from and writes to.
type Locations struct {
	Username string
	Livetype string
	Desktop  string
}

// SanitizeUsername trims input and rejects empty names and names that could
// escape the users directory.
func SanitizeUsername(input string) (string, bool) {
	name := strings.TrimSpace(input)
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return name, true
}

// IsCancel reports whether input asks to abort the prompt.
func IsCancel(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), CancelWord)
}

// Resolve returns the cache and Desktop paths for username on goos. Paths use
// forward slashes on every platform.
func Resolve(goos, username string) (Locations, error) {
	loc := Locations{Username: username}
	switch goos {
	case "darwin":
		home := path.Join("/Users", username)
		loc.Livetype = path.Join(home, "Library", "Application Support", "Adobe", "CoreSync", "plugins", "livetype")
		loc.Desktop = path.Join(home, "Desktop")
	case "windows":
		home := path.Join("C:/Users", username)
		loc.Livetype = path.Join(home, "AppData", "Roaming", "Adobe", "CoreSync", "plugins", "livetype")
		loc.Desktop = path.Join(home, "Desktop")
	default:
		return loc, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
	return loc, nil
}

// Validate checks that both directories exist.
func (l Locations) Validate() error {
	for _, dir := range []string{l.Livetype, l.Desktop} {
		info, err := os.Stat(filepath.FromSlash(dir))
		if err != nil {
			return fmt.Errorf("could not find %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
	}
	return nil
}

// DefaultUsername returns the login name of the current user, without any
// Windows domain prefix, or "" when it cannot be determined.
func DefaultUsername() string {
	current, err := user.Current()
	if err != nil {
		return ""
	}
	name := current.Username
	if idx := strings.LastIndex(name, `\`); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// HomeDesktop returns ~/Desktop when it exists, otherwise the home directory.
// It is used when the source directory is configured explicitly and no
// account prompt runs.
func HomeDesktop() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop, nil
	}
	return home, nil
}
