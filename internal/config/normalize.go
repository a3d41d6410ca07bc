package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArchive()
	c.normalizeLogging()
	c.normalizePrompts()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		if value, ok := os.LookupEnv("FONARCHIVE_SOURCE_DIR"); ok {
			c.Paths.SourceDir = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv("FONARCHIVE_OUTPUT_DIR"); ok {
			c.Paths.OutputDir = strings.TrimSpace(value)
		}
	}

	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeArchive() {
	c.Archive.FolderName = strings.TrimSpace(c.Archive.FolderName)
	if c.Archive.FolderName == "" {
		c.Archive.FolderName = defaultArchiveFolder
	}
	c.Archive.DescriptorName = strings.TrimSpace(c.Archive.DescriptorName)
	if c.Archive.DescriptorName == "" {
		c.Archive.DescriptorName = defaultDescriptorName
	}
	suffixes := c.Archive.FamilySuffixes[:0]
	for _, s := range c.Archive.FamilySuffixes {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			suffixes = append(suffixes, trimmed)
		}
	}
	c.Archive.FamilySuffixes = suffixes
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.Backups == 0 {
		c.Logging.Backups = defaultLogBackups
	}
}

func (c *Config) normalizePrompts() {
	if c.Prompts.MaxUsernameAttempts == 0 {
		c.Prompts.MaxUsernameAttempts = defaultMaxUsernameAttempts
	}
}
