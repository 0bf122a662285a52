package evaluate

import (
	"errors"
	"fmt"
)

// Counts is the binary confusion matrix at one threshold.
type Counts struct {
	TP int
	FP int
	TN int
	FN int
}

// Score holds the per-threshold evaluation results. IoU is the average of
// the foreground and background intersection-over-union.
type Score struct {
	Threshold     float64
	ForegroundIoU float64
	IoU           float64
	Precision     float64
	Recall        float64
}

// Confusion tallies the confusion matrix of a probability map against a
// binary label volume. A prediction counts as foreground when it exceeds the
// threshold; ground-truth values are binarized at 0.5.
func Confusion(pred, gt []float32, threshold float64) (Counts, error) {
	if len(pred) != len(gt) {
		return Counts{}, fmt.Errorf("volume size mismatch: pred %d vs gt %d", len(pred), len(gt))
	}
	var c Counts
	for i := range pred {
		fg := float64(pred[i]) > threshold
		truth := gt[i] > 0.5
		switch {
		case truth && fg:
			c.TP++
		case !truth && fg:
			c.FP++
		case !truth && !fg:
			c.TN++
		default:
			c.FN++
		}
	}
	return c, nil
}

// BinaryJaccard evaluates a foreground probability volume against a binary
// ground-truth volume at each threshold. Already-binarized predictions score
// identically at every threshold.
func BinaryJaccard(pred, gt []float32, thresholds []float64) ([]Score, error) {
	if len(thresholds) == 0 {
		thresholds = []float64{0.5}
	}
	scores := make([]Score, 0, len(thresholds))
	for _, t := range thresholds {
		if t <= 0.0 || t >= 1.0 {
			return nil, fmt.Errorf("threshold %g outside (0,1)", t)
		}
		c, err := Confusion(pred, gt, t)
		if err != nil {
			return nil, err
		}
		s, err := c.score(t)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, nil
}

func (c Counts) score(threshold float64) (Score, error) {
	if c.TP+c.FP == 0 || c.TP+c.FN == 0 || c.TN+c.FP+c.FN == 0 {
		return Score{}, errors.New("degenerate volumes: a confusion quadrant sum is zero")
	}
	tp := float64(c.TP)
	iouFG := tp / float64(c.TP+c.FP+c.FN)
	iouBG := float64(c.TN) / float64(c.TN+c.FP+c.FN)
	return Score{
		Threshold:     threshold,
		ForegroundIoU: iouFG,
		IoU:           (iouFG + iouBG) / 2.0,
		Precision:     tp / float64(c.TP+c.FP),
		Recall:        tp / float64(c.TP+c.FN),
	}, nil
}
