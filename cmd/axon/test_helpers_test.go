package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"axon/internal/testsupport"
)

// writeTestConfig materializes a per-test configuration file and returns its
// path.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal test config: %v", err)
	}
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return configPath
}

// runCLI executes the root command with the given arguments and returns the
// combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
