package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/dataset"
	"github.com/bhoomipatni/TheHandStand/internal/train"
)

var trainOpts struct {
	KeypointsDir string
	ModelPath    string
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the static sign classifier from extracted keypoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, err := dataset.Load(trainOpts.KeypointsDir)
		if err != nil {
			return err
		}

		model, err := train.Train(samples)
		if err != nil {
			return err
		}

		if err := classifier.SaveModel(model, trainOpts.ModelPath); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "trained %d classes from %d samples, model saved to %s\n",
			len(model.Labels), len(samples), trainOpts.ModelPath)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVarP(&trainOpts.KeypointsDir, "keypoints", "k", "keypoints", "Directory of extracted keypoint JSON files")
	trainCmd.Flags().StringVarP(&trainOpts.ModelPath, "model", "m", "models/static_classifier.json", "Output path for the trained model")

	rootCmd.AddCommand(trainCmd)
}
