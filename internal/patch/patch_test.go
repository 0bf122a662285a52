package patch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// stubLocate makes Locate print the given target path.
func stubLocate(t *testing.T, target string) {
	t.Helper()
	restore := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "echo", target)
	}
	t.Cleanup(func() { commandContext = restore })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestApplyBacksUpAndReplaces(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sharded.py")
	source := filepath.Join(dir, "replacement.py")
	writeFile(t, target, "original")
	writeFile(t, source, "patched")
	stubLocate(t, target)

	p := New(Options{Module: "cloudvolume.datasource.precomputed.skeleton.sharded", Source: source}, nil)
	state, err := p.Apply(context.Background())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !state.Applied || !state.InSync {
		t.Fatalf("unexpected state %#v", state)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(got) != "patched" {
		t.Fatalf("target not replaced: %q", string(got))
	}

	backup, err := os.ReadFile(target + backupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "original" {
		t.Fatalf("backup corrupted: %q", string(backup))
	}
}

func TestApplyTwiceKeepsOriginalBackup(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sharded.py")
	source := filepath.Join(dir, "replacement.py")
	writeFile(t, target, "original")
	writeFile(t, source, "patched-v1")
	stubLocate(t, target)

	p := New(Options{Module: "m", Source: source}, nil)
	if _, err := p.Apply(context.Background()); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}

	writeFile(t, source, "patched-v2")
	if _, err := p.Apply(context.Background()); err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}

	backup, err := os.ReadFile(target + backupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "original" {
		t.Fatalf("backup overwritten on re-apply: %q", string(backup))
	}
}

func TestRevertRestoresOriginal(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sharded.py")
	source := filepath.Join(dir, "replacement.py")
	writeFile(t, target, "original")
	writeFile(t, source, "patched")
	stubLocate(t, target)

	p := New(Options{Module: "m", Source: source}, nil)
	if _, err := p.Apply(context.Background()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := p.Revert(context.Background()); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(got) != "original" {
		t.Fatalf("target not restored: %q", string(got))
	}
	if _, err := os.Stat(target + backupSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected backup to be removed after revert")
	}
}

func TestRevertWithoutApply(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sharded.py")
	writeFile(t, target, "original")
	stubLocate(t, target)

	p := New(Options{Module: "m"}, nil)
	if _, err := p.Revert(context.Background()); !errors.Is(err, ErrNotApplied) {
		t.Fatalf("expected ErrNotApplied, got %v", err)
	}
}

func TestApplyMissingSource(t *testing.T) {
	p := New(Options{Module: "m", Source: filepath.Join(t.TempDir(), "missing.py")}, nil)
	if _, err := p.Apply(context.Background()); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestLocateStripsBytecodeSuffix(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sharded.py")
	stubLocate(t, target+"c")

	p := New(Options{Module: "m"}, nil)
	got, err := p.Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != target {
		t.Fatalf("expected %q, got %q", target, got)
	}
}

func TestStatusReportsSync(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sharded.py")
	source := filepath.Join(dir, "replacement.py")
	writeFile(t, target, "patched")
	writeFile(t, source, "patched")
	writeFile(t, target+backupSuffix, "original")
	stubLocate(t, target)

	p := New(Options{Module: "m", Source: source}, nil)
	state, err := p.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !state.Applied || !state.InSync {
		t.Fatalf("unexpected state %#v", state)
	}
	if state.Target != target || state.BackupPath != fmt.Sprintf("%s%s", target, backupSuffix) {
		t.Fatalf("unexpected paths in state %#v", state)
	}
}
