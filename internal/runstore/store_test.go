package runstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"axon/internal/runstore"
)

func openStore(t *testing.T) *runstore.Store {
	t.Helper()
	store, err := runstore.OpenPath(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInvocationLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	inv, err := store.NewInvocation(ctx, "run-1", runstore.KindEmbed, 0, false, "python3 main.py --inference", "/tmp/worker-0.log")
	if err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}
	if inv.ID == 0 {
		t.Fatal("expected invocation ID to be assigned")
	}
	if inv.Status != runstore.StatusPending {
		t.Fatalf("expected pending status, got %s", inv.Status)
	}

	if err := store.MarkStarted(ctx, inv.ID, 4242); err != nil {
		t.Fatalf("MarkStarted failed: %v", err)
	}
	started, err := store.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if started.Status != runstore.StatusRunning || started.PID != 4242 {
		t.Fatalf("unexpected running state: %#v", started)
	}
	if started.StartedAt == nil {
		t.Fatal("expected started_at to be recorded")
	}

	if err := store.MarkFinished(ctx, inv.ID, 0); err != nil {
		t.Fatalf("MarkFinished failed: %v", err)
	}
	finished, err := store.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if finished.Status != runstore.StatusCompleted {
		t.Fatalf("expected completed, got %s", finished.Status)
	}
	if finished.ExitCode == nil || *finished.ExitCode != 0 {
		t.Fatalf("unexpected exit code: %#v", finished.ExitCode)
	}
	if finished.Duration() < 0 {
		t.Fatal("expected non-negative duration")
	}
}

func TestMarkFinishedNonZeroExitFails(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	inv, err := store.NewInvocation(ctx, "run-2", runstore.KindClassify, 0, true, "python3 test.py", "")
	if err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}
	if err := store.MarkFinished(ctx, inv.ID, 3); err != nil {
		t.Fatalf("MarkFinished failed: %v", err)
	}

	got, err := store.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != runstore.StatusFailed {
		t.Fatalf("expected failed status, got %s", got.Status)
	}
	if got.ExitCode == nil || *got.ExitCode != 3 {
		t.Fatalf("unexpected exit code: %#v", got.ExitCode)
	}
}

func TestListByRunOrdersBySlot(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for slot := 4; slot >= 0; slot-- {
		if _, err := store.NewInvocation(ctx, "run-3", runstore.KindEmbed, slot, false, "cmd", ""); err != nil {
			t.Fatalf("NewInvocation failed: %v", err)
		}
	}
	if _, err := store.NewInvocation(ctx, "run-3", runstore.KindEmbed, 5, true, "cmd", ""); err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}

	items, err := store.ListByRun(ctx, "run-3")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("expected 6 invocations, got %d", len(items))
	}
	for i, inv := range items {
		if inv.Slot != i {
			t.Fatalf("expected slot %d at position %d, got %d", i, i, inv.Slot)
		}
	}
	if !items[5].Foreground {
		t.Fatal("expected final invocation to be foreground")
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.NewInvocation(ctx, "run-a", runstore.KindEmbed, 0, false, "cmd", "")
	if err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}
	second, err := store.NewInvocation(ctx, "run-b", runstore.KindEmbed, 0, false, "cmd", "")
	if err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}

	items, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("unexpected ordering: %#v", items)
	}
}

func TestClearRemovesFinishedOnly(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	done, err := store.NewInvocation(ctx, "run-c", runstore.KindEmbed, 0, false, "cmd", "")
	if err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}
	if err := store.MarkFinished(ctx, done.ID, 0); err != nil {
		t.Fatalf("MarkFinished failed: %v", err)
	}
	pending, err := store.NewInvocation(ctx, "run-c", runstore.KindEmbed, 1, false, "cmd", "")
	if err != nil {
		t.Fatalf("NewInvocation failed: %v", err)
	}

	removed, err := store.Clear(ctx, false)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 row removed, got %d", removed)
	}
	if _, err := store.GetByID(ctx, pending.ID); err != nil {
		t.Fatalf("pending invocation should survive: %v", err)
	}

	removed, err = store.Clear(ctx, true)
	if err != nil {
		t.Fatalf("Clear all failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 row removed by clear all, got %d", removed)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := openStore(t)
	if _, err := store.GetByID(context.Background(), 999); !errors.Is(err, runstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewInvocationRequiresRunID(t *testing.T) {
	store := openStore(t)
	if _, err := store.NewInvocation(context.Background(), "", runstore.KindEmbed, 0, false, "cmd", ""); err == nil {
		t.Fatal("expected error for empty run id")
	}
}
