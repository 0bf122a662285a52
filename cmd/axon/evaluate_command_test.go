package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeVolumes(t *testing.T) (pred, gt string) {
	t.Helper()

	dir := t.TempDir()
	pred = filepath.Join(dir, "pred.raw")
	gt = filepath.Join(dir, "gt.raw")
	// Binary volumes stored as uint8 so both sides share a dtype.
	if err := os.WriteFile(pred, []byte{1, 0, 1, 0}, 0o644); err != nil {
		t.Fatalf("write pred: %v", err)
	}
	if err := os.WriteFile(gt, []byte{1, 0, 0, 0}, 0o644); err != nil {
		t.Fatalf("write gt: %v", err)
	}
	return pred, gt
}

func TestEvaluateCommandRendersScores(t *testing.T) {
	pred, gt := writeVolumes(t)

	out, err := runCLI(t, "evaluate",
		"--pred", pred, "--pred-dtype", "uint8",
		"--gt", gt, "--gt-dtype", "uint8",
		"--dims", "1,2,2")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !strings.Contains(out, "FG IoU") || !strings.Contains(out, "0.5") {
		t.Fatalf("expected score table, got %q", out)
	}
}

func TestEvaluateCommandRandMetric(t *testing.T) {
	dir := t.TempDir()
	seg := filepath.Join(dir, "seg.raw")
	gt := filepath.Join(dir, "gt.raw")
	// One ground-truth object split in two segments.
	if err := os.WriteFile(seg, []byte{1, 1, 2, 2}, 0o644); err != nil {
		t.Fatalf("write seg: %v", err)
	}
	if err := os.WriteFile(gt, []byte{1, 1, 1, 1}, 0o644); err != nil {
		t.Fatalf("write gt: %v", err)
	}

	out, err := runCLI(t, "evaluate",
		"--pred", seg, "--pred-dtype", "uint8",
		"--gt", gt, "--gt-dtype", "uint8",
		"--dims", "1,2,2",
		"--rand")
	if err != nil {
		t.Fatalf("evaluate --rand failed: %v", err)
	}
	for _, want := range []string{"Rand error", "0.3333", "1.0000", "0.5000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestEvaluateCommandRequiresInputs(t *testing.T) {
	if _, err := runCLI(t, "evaluate"); err == nil {
		t.Fatal("expected error without --pred and --gt")
	}
}

func TestEvaluateCommandJSON(t *testing.T) {
	pred, gt := writeVolumes(t)

	out, err := runCLI(t, "evaluate",
		"--pred", pred, "--pred-dtype", "uint8",
		"--gt", gt, "--gt-dtype", "uint8",
		"--threshold", "0.3", "--threshold", "0.7",
		"--json")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !strings.Contains(out, "\"Threshold\": 0.3") || !strings.Contains(out, "\"Threshold\": 0.7") {
		t.Fatalf("expected two JSON scores, got %q", out)
	}
}
