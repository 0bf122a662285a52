package evaluate

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAdaptedRandPerfectMatch(t *testing.T) {
	gt := []int{1, 1, 2, 2}
	seg := []int{1, 1, 2, 2}

	score, err := AdaptedRand(seg, gt)
	if err != nil {
		t.Fatalf("AdaptedRand failed: %v", err)
	}
	if !almostEqual(score.Error, 0) {
		t.Fatalf("expected zero error, got %g", score.Error)
	}
	if !almostEqual(score.Precision, 1) || !almostEqual(score.Recall, 1) {
		t.Fatalf("expected perfect precision/recall, got %g/%g", score.Precision, score.Recall)
	}
}

func TestAdaptedRandRelabeledMatch(t *testing.T) {
	// Label identity does not matter, only the partition.
	gt := []int{1, 1, 2, 2}
	seg := []int{7, 7, 3, 3}

	score, err := AdaptedRand(seg, gt)
	if err != nil {
		t.Fatalf("AdaptedRand failed: %v", err)
	}
	if !almostEqual(score.Error, 0) {
		t.Fatalf("expected zero error for relabeled match, got %g", score.Error)
	}
}

func TestAdaptedRandSplitObject(t *testing.T) {
	// One ground-truth object split in two: precision 1, recall 1/2,
	// error 1 - F = 1/3.
	gt := []int{1, 1, 1, 1}
	seg := []int{1, 1, 2, 2}

	score, err := AdaptedRand(seg, gt)
	if err != nil {
		t.Fatalf("AdaptedRand failed: %v", err)
	}
	if !almostEqual(score.Precision, 1) {
		t.Fatalf("expected precision 1, got %g", score.Precision)
	}
	if !almostEqual(score.Recall, 0.5) {
		t.Fatalf("expected recall 0.5, got %g", score.Recall)
	}
	if !almostEqual(score.Error, 1.0/3.0) {
		t.Fatalf("expected error 1/3, got %g", score.Error)
	}
}

func TestAdaptedRandIgnoresGroundTruthBackground(t *testing.T) {
	gt := []int{0, 1, 1}
	seg := []int{5, 2, 2}

	score, err := AdaptedRand(seg, gt)
	if err != nil {
		t.Fatalf("AdaptedRand failed: %v", err)
	}
	if !almostEqual(score.Error, 0) {
		t.Fatalf("expected background voxel to be ignored, got error %g", score.Error)
	}
}

func TestAdaptedRandUnassignedPenalizesRecall(t *testing.T) {
	// One of two foreground voxels left unassigned: precision 1, recall 1/2.
	gt := []int{1, 1}
	seg := []int{0, 1}

	score, err := AdaptedRand(seg, gt)
	if err != nil {
		t.Fatalf("AdaptedRand failed: %v", err)
	}
	if !almostEqual(score.Precision, 1) {
		t.Fatalf("expected precision 1, got %g", score.Precision)
	}
	if !almostEqual(score.Recall, 0.5) {
		t.Fatalf("expected recall 0.5, got %g", score.Recall)
	}
	if !almostEqual(score.Error, 1.0/3.0) {
		t.Fatalf("expected error 1/3, got %g", score.Error)
	}
}

func TestAdaptedRandRejectsBadInput(t *testing.T) {
	if _, err := AdaptedRand(nil, nil); err == nil {
		t.Fatal("expected error for empty volumes")
	}
	if _, err := AdaptedRand([]int{1}, []int{1, 2}); err == nil {
		t.Fatal("expected error for size mismatch")
	}
	if _, err := AdaptedRand([]int{-1}, []int{1}); err == nil {
		t.Fatal("expected error for negative label")
	}
	if _, err := AdaptedRand([]int{1, 1}, []int{0, 0}); err == nil {
		t.Fatal("expected error when ground truth has no objects")
	}
}

func TestLabelsTruncates(t *testing.T) {
	got := Labels([]float32{0, 1, 2.9, 7})
	want := []int{0, 1, 2, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Labels[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
