package evaluate

import (
	"errors"
	"fmt"
)

// RandScore holds the adapted Rand error of a candidate segmentation: one
// minus the F-score of the Rand precision and recall.
type RandScore struct {
	Error     float64
	Precision float64
	Recall    float64
}

// AdaptedRand scores a candidate label volume against a ground-truth label
// volume. Label 0 marks background in the ground truth and unassigned voxels
// in the segmentation; ground-truth background voxels are excluded, while
// unassigned segmentation voxels count against recall.
func AdaptedRand(seg, gt []int) (RandScore, error) {
	if len(seg) == 0 {
		return RandScore{}, errors.New("empty volumes")
	}
	if len(seg) != len(gt) {
		return RandScore{}, fmt.Errorf("volume size mismatch: seg %d vs gt %d", len(seg), len(gt))
	}

	n := float64(len(seg))
	type cell struct{ gt, seg int }
	joint := make(map[cell]float64)
	for i := range seg {
		if seg[i] < 0 || gt[i] < 0 {
			return RandScore{}, fmt.Errorf("negative label at index %d", i)
		}
		joint[cell{gt[i], seg[i]}] += 1 / n
	}

	// Marginals over ground-truth objects only; the seg-0 column is kept
	// separate so unassigned voxels penalize recall but not precision.
	rowSums := make(map[int]float64)
	colSums := make(map[int]float64)
	var unassigned, pairSquares float64
	for c, p := range joint {
		if c.gt == 0 {
			continue
		}
		rowSums[c.gt] += p
		if c.seg == 0 {
			unassigned += p
			continue
		}
		colSums[c.seg] += p
		pairSquares += p * p
	}

	var sumA, sumB float64
	for _, p := range rowSums {
		sumA += p * p
	}
	for _, p := range colSums {
		sumB += p * p
	}
	sumB += unassigned / n
	sumAB := pairSquares + unassigned/n

	if sumA == 0 || sumB == 0 {
		return RandScore{}, errors.New("ground truth or segmentation has no foreground objects")
	}
	precision := sumAB / sumB
	recall := sumAB / sumA
	fscore := 2 * precision * recall / (precision + recall)
	return RandScore{
		Error:     1 - fscore,
		Precision: precision,
		Recall:    recall,
	}, nil
}

// Labels converts a raw volume into integer labels by truncation.
func Labels(v []float32) []int {
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}
