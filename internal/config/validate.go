package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validatePrompts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateArchive() error {
	if strings.ContainsAny(c.Archive.FolderName, `/\`) || c.Archive.FolderName == ".." {
		return fmt.Errorf("archive.default_folder %q must be a plain folder name", c.Archive.FolderName)
	}
	if strings.ContainsAny(c.Archive.DescriptorName, `/\`) {
		return fmt.Errorf("archive.descriptor_name %q must be a plain file name", c.Archive.DescriptorName)
	}
	if c.Archive.MinFontBytes < 4 {
		return errors.New("archive.min_font_bytes must be >= 4")
	}
	if c.Archive.LowSpaceBytes < 0 {
		return errors.New("archive.low_space_bytes must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return errors.New("logging.max_size_mb must be > 0")
	}
	if c.Logging.Backups < 1 {
		return errors.New("logging.backups must be >= 1")
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validatePrompts() error {
	if c.Prompts.MaxUsernameAttempts < 1 {
		return errors.New("prompts.max_username_attempts must be >= 1")
	}
	return nil
}
