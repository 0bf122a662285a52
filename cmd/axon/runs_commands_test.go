package main

import (
	"context"
	"strings"
	"testing"

	"axon/internal/config"
	"axon/internal/runstore"
	"axon/internal/testsupport"
)

func seedRunHistory(t *testing.T, configPath string) {
	t.Helper()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load test config: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	inv := testsupport.NewInvocation(t, store, "run-1", runstore.KindEmbed, 0, false, "python3 main.py --inference")
	if err := store.MarkStarted(ctx, inv.ID, 4242); err != nil {
		t.Fatalf("mark started: %v", err)
	}
	if err := store.MarkFinished(ctx, inv.ID, 0); err != nil {
		t.Fatalf("mark finished: %v", err)
	}
}

func TestRunsListRendersTable(t *testing.T) {
	configPath := writeTestConfig(t)
	seedRunHistory(t, configPath)

	out, err := runCLI(t, "--config", configPath, "runs", "list")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, "embed") || !strings.Contains(out, "completed") {
		t.Fatalf("expected seeded invocation in table, got %q", out)
	}
}

func TestRunsListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCLI(t, "--config", configPath, "runs", "list")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, "No recorded invocations") {
		t.Fatalf("expected empty message, got %q", out)
	}
}

func TestRunsShowUnknownID(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCLI(t, "--config", configPath, "runs", "show", "999"); err == nil {
		t.Fatal("expected error for unknown invocation id")
	}
}

func TestRunsShowDetails(t *testing.T) {
	configPath := writeTestConfig(t)
	seedRunHistory(t, configPath)

	out, err := runCLI(t, "--config", configPath, "runs", "show", "1")
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	for _, want := range []string{"run-1", "worker 0", "4242", "python3 main.py"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestRunsClearRemovesFinished(t *testing.T) {
	configPath := writeTestConfig(t)
	seedRunHistory(t, configPath)

	out, err := runCLI(t, "--config", configPath, "runs", "clear")
	if err != nil {
		t.Fatalf("runs clear failed: %v", err)
	}
	if !strings.Contains(out, "Removed 1 invocations") {
		t.Fatalf("unexpected clear output: %q", out)
	}
}
