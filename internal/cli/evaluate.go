package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/dataset"
	"github.com/bhoomipatni/TheHandStand/internal/train"
)

var evaluateOpts struct {
	KeypointsDir string
	ModelPath    string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a trained model against a keypoint dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := classifier.LoadModel(evaluateOpts.ModelPath)
		if err != nil {
			return err
		}

		samples, err := dataset.Load(evaluateOpts.KeypointsDir)
		if err != nil {
			return err
		}

		report, err := train.Evaluate(model, samples)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "accuracy: %.1f%% (%d/%d samples)\n",
			report.Accuracy*100, report.Correct, report.Total)

		glosses := make([]string, 0, len(report.PerGloss))
		for gloss := range report.PerGloss {
			glosses = append(glosses, gloss)
		}
		sort.Strings(glosses)
		for _, gloss := range glosses {
			r := report.PerGloss[gloss]
			fmt.Fprintf(os.Stdout, "  %-16s %d/%d\n", gloss, r.Correct, r.Total)
		}
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateOpts.KeypointsDir, "keypoints", "k", "keypoints", "Directory of extracted keypoint JSON files")
	evaluateCmd.Flags().StringVarP(&evaluateOpts.ModelPath, "model", "m", "models/static_classifier.json", "Path to the trained model")

	rootCmd.AddCommand(evaluateCmd)
}
