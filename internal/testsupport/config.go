package testsupport

import (
	"path/filepath"
	"testing"

	"axon/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Embedding.InputPath = filepath.Join(base, "blocks")
	cfg.Embedding.OutputPath = filepath.Join(base, "embeddings")
	cfg.Embedding.Checkpoint = filepath.Join(base, "ckpt.pth.tar")
	cfg.Classification.ProjectDir = filepath.Join(base, "project")
	return &cfg
}
