package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fonarchive/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
// The source directory is created empty; the archive directory is not.
// Prompts answer with their defaults and the low-space check is disabled.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "livetype")
	cfg.Paths.OutputDir = filepath.Join(base, "Desktop", cfg.Archive.FolderName)
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Prompts.AssumeYes = true
	cfg.Archive.LowSpaceBytes = 0

	if err := os.MkdirAll(cfg.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source dir: %v", err)
	}
	return &cfg
}
