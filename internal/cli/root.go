// Package cli implements the signpipe command line: the offline
// download → extract → train → evaluate pipeline.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "signpipe",
	Short:   "Offline sign language dataset and training pipeline",
	Long:    "signpipe prepares the static sign classifier: it downloads WLASL videos, extracts hand keypoints, trains the nearest-centroid model, and evaluates it.",
	Version: Version,
}

// Execute runs the root command with signal-aware cancellation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
