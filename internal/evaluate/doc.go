// Package evaluate scores binary segmentation predictions against
// ground-truth label volumes using the Jaccard index. Volumes are flat raw
// files (uint8 labels or little-endian float32 probabilities); the scores
// per threshold are foreground IoU, mean IoU, precision and recall.
package evaluate
