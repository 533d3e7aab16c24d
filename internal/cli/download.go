package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bhoomipatni/TheHandStand/internal/dataset"
)

var downloadOpts struct {
	IndexPath string
	OutDir    string
	Glosses   []string
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download sign videos from a WLASL index",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := dataset.LoadIndex(downloadOpts.IndexPath)
		if err != nil {
			return err
		}

		d := dataset.NewDownloader(downloadOpts.OutDir, downloadOpts.Glosses)

		bar := progressbar.NewOptions(countInstances(entries, downloadOpts.Glosses),
			progressbar.OptionSetDescription("Downloading videos"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		d.OnProgress = func() { bar.Add(1) }

		stats, err := d.Download(cmd.Context(), entries)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "\ndownloaded %d, skipped %d, failed %d\n",
			stats.Downloaded, stats.Skipped, stats.Failed)
		return nil
	},
}

// countInstances totals the instances the downloader will attempt.
func countInstances(entries []dataset.IndexEntry, glosses []string) int {
	wanted := make(map[string]bool, len(glosses))
	for _, g := range glosses {
		wanted[strings.ToUpper(g)] = true
	}

	total := 0
	for _, entry := range entries {
		if len(wanted) > 0 && !wanted[strings.ToUpper(entry.Gloss)] {
			continue
		}
		total += len(entry.Instances)
	}
	return total
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOpts.IndexPath, "index", "i", "WLASL_v0.3.json", "Path to the WLASL index JSON")
	downloadCmd.Flags().StringVarP(&downloadOpts.OutDir, "out", "o", "videos", "Output directory for downloaded videos")
	downloadCmd.Flags().StringSliceVarP(&downloadOpts.Glosses, "glosses", "g", nil, "Glosses to download (default: all)")

	rootCmd.AddCommand(downloadCmd)
}
