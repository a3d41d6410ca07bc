package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. Empty source and output directories
// are resolved from the account prompt at run time.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Archive contains configuration for classification and filing.
type Archive struct {
	FolderName     string   `toml:"default_folder"`
	DescriptorName string   `toml:"descriptor_name"`
	MinFontBytes   int64    `toml:"min_font_bytes"`
	LowSpaceBytes  int64    `toml:"low_space_bytes"`
	FamilySuffixes []string `toml:"family_suffixes"`
}

// Logging contains configuration for console output and the run log.
type Logging struct {
	Format   string `toml:"format"`
	Level    string `toml:"level"`
	MaxSizeMB int   `toml:"max_size_mb"`
	Backups  int    `toml:"backups"`

	// RetentionDays prunes run logs left behind by failed runs in the
	// run log directory. Zero disables pruning.
	RetentionDays int `toml:"retention_days"`
}

// Prompts contains configuration for the interactive setup questions.
type Prompts struct {
	AssumeYes           bool `toml:"assume_yes"`
	MaxUsernameAttempts int  `toml:"max_username_attempts"`
}

// Config encapsulates all configuration values for FONarchive.
//
// Configuration sections by subsystem:
//   - Paths: source cache, archive output, and initial run log location
//   - Archive: size threshold, descriptor file name, base family suffixes
//   - Logging: console format and level, run log rotation
//   - Prompts: non-interactive mode and username retries
type Config struct {
	Paths   Paths   `toml:"paths"`
	Archive Archive `toml:"archive"`
	Logging Logging `toml:"logging"`
	Prompts Prompts `toml:"prompts"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fonarchive/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fonarchive.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the configured log directory. Source and output
// directories are never created here: the source is read-only and the output
// is owned by the workspace setup.
func (c *Config) EnsureDirectories() error {
	if dir := strings.TrimSpace(c.Paths.LogDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunLogDir returns the directory where the run log is created before it is
// relocated into the archive. An unset log_dir falls back to the fonarchive
// data directory, never to the directory the tool was started from.
func (c *Config) RunLogDir() string {
	dir := strings.TrimSpace(c.Paths.LogDir)
	if dir == "" {
		dir = defaultLogDir
	}
	if expanded, err := expandPath(dir); err == nil {
		return expanded
	}
	return dir
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
