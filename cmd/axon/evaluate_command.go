package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"axon/internal/evaluate"
)

func newEvaluateCommand() *cobra.Command {
	var (
		predPath   string
		gtPath     string
		predDType  string
		gtDType    string
		dims       []int
		thresholds []float64
		randMetric bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:         "evaluate",
		Short:       "Score a binary prediction volume against ground truth",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if predPath == "" || gtPath == "" {
				return errors.New("--pred and --gt are required")
			}

			pdt, err := evaluate.ParseDType(predDType)
			if err != nil {
				return err
			}
			gdt, err := evaluate.ParseDType(gtDType)
			if err != nil {
				return err
			}

			pred, err := evaluate.ReadVolume(predPath, pdt, dims)
			if err != nil {
				return err
			}
			gt, err := evaluate.ReadVolume(gtPath, gdt, dims)
			if err != nil {
				return err
			}

			if randMetric {
				score, err := evaluate.AdaptedRand(evaluate.Labels(pred), evaluate.Labels(gt))
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, score)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]tableColumn{
						{name: "Rand error", right: true},
						{name: "Precision", right: true},
						{name: "Recall", right: true},
					},
					[][]string{{
						fmt.Sprintf("%.4f", score.Error),
						fmt.Sprintf("%.4f", score.Precision),
						fmt.Sprintf("%.4f", score.Recall),
					}},
				))
				return nil
			}

			scores, err := evaluate.BinaryJaccard(pred, gt, thresholds)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, scores)
			}

			rows := make([][]string, 0, len(scores))
			for _, s := range scores {
				rows = append(rows, []string{
					strconv.FormatFloat(s.Threshold, 'g', -1, 64),
					fmt.Sprintf("%.4f", s.ForegroundIoU),
					fmt.Sprintf("%.4f", s.IoU),
					fmt.Sprintf("%.4f", s.Precision),
					fmt.Sprintf("%.4f", s.Recall),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{
					{name: "Threshold", right: true},
					{name: "FG IoU", right: true},
					{name: "IoU", right: true},
					{name: "Precision", right: true},
					{name: "Recall", right: true},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&predPath, "pred", "", "Prediction volume (raw file)")
	cmd.Flags().StringVar(&gtPath, "gt", "", "Ground-truth volume (raw file)")
	cmd.Flags().StringVar(&predDType, "pred-dtype", "float32", "Prediction element type (uint8 or float32)")
	cmd.Flags().StringVar(&gtDType, "gt-dtype", "uint8", "Ground-truth element type (uint8 or float32)")
	cmd.Flags().IntSliceVar(&dims, "dims", nil, "Volume dimensions, e.g. --dims 64,128,128")
	cmd.Flags().Float64SliceVar(&thresholds, "threshold", nil, "Probability thresholds in (0,1); defaults to 0.5")
	cmd.Flags().BoolVar(&randMetric, "rand", false, "Score label volumes with the adapted Rand error instead of binary Jaccard")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}
