package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bhoomipatni/TheHandStand/internal/dataset"
	"github.com/bhoomipatni/TheHandStand/internal/detector"
)

var extractOpts struct {
	InDir       string
	OutDir      string
	FrameStride int
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract hand keypoints from downloaded videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
		if err != nil {
			return fmt.Errorf("start hand detector: %w", err)
		}
		defer det.Close()

		processor := dataset.NewMediaPipeProcessor(det)
		if extractOpts.FrameStride > 0 {
			processor.FrameStride = extractOpts.FrameStride
		}

		total, err := dataset.CountVideos(extractOpts.InDir)
		if err != nil {
			return err
		}
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Extracting keypoints"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)

		e := dataset.NewExtractor(processor)
		e.OnFile = func(string) { bar.Add(1) }

		n, err := e.ExtractDir(cmd.Context(), extractOpts.InDir, extractOpts.OutDir)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\nextracted keypoints for %d videos into %s\n", n, extractOpts.OutDir)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.InDir, "in", "i", "videos", "Directory of downloaded videos")
	extractCmd.Flags().StringVarP(&extractOpts.OutDir, "out", "o", "keypoints", "Output directory for keypoint JSON files")
	extractCmd.Flags().IntVarP(&extractOpts.FrameStride, "stride", "s", 2, "Process every Nth frame")

	rootCmd.AddCommand(extractCmd)
}
