// Package dataset handles the offline corpus: downloading WLASL sign
// videos, extracting keypoints, and loading labeled samples.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IndexEntry is one gloss entry in the WLASL index file.
type IndexEntry struct {
	Gloss     string     `json:"gloss"`
	Instances []Instance `json:"instances"`
}

// Instance is one video occurrence of a gloss.
type Instance struct {
	URL     string `json:"url"`
	VideoID string `json:"video_id"`
}

// LoadIndex reads a WLASL index JSON file.
func LoadIndex(path string) ([]IndexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return entries, nil
}

// DownloadStats summarizes one download run.
type DownloadStats struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Downloader fetches the videos for a selected set of glosses into
// per-gloss directories.
type Downloader struct {
	// OutDir is the root output directory; each gloss gets a
	// subdirectory named after it.
	OutDir string

	// Glosses selects which words to download, matched
	// case-insensitively. Empty means every gloss in the index.
	Glosses []string

	// OnProgress, when set, is called after each instance attempt.
	OnProgress func()

	// fetch downloads one URL into the gloss directory; replaced in
	// tests. The default shells out to yt-dlp.
	fetch func(ctx context.Context, url, outTemplate string) error
}

// NewDownloader creates a Downloader writing under outDir.
func NewDownloader(outDir string, glosses []string) *Downloader {
	return &Downloader{
		OutDir:  outDir,
		Glosses: glosses,
		fetch:   fetchWithYtDlp,
	}
}

// Download fetches every selected instance. Individual failures are
// logged and counted, never fatal.
func (d *Downloader) Download(ctx context.Context, entries []IndexEntry) (DownloadStats, error) {
	var stats DownloadStats

	wanted := make(map[string]bool, len(d.Glosses))
	for _, g := range d.Glosses {
		wanted[strings.ToUpper(g)] = true
	}

	for _, entry := range entries {
		gloss := strings.ToUpper(entry.Gloss)
		if len(wanted) > 0 && !wanted[gloss] {
			continue
		}

		glossDir := filepath.Join(d.OutDir, gloss)
		if err := os.MkdirAll(glossDir, 0755); err != nil {
			return stats, fmt.Errorf("create gloss directory: %w", err)
		}

		for _, inst := range entry.Instances {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			switch {
			case inst.URL == "":
				log.Printf("skipping %s/%s: no URL", gloss, inst.VideoID)
				stats.Skipped++
			default:
				outTemplate := filepath.Join(glossDir, "%(id)s.%(ext)s")
				if err := d.fetch(ctx, inst.URL, outTemplate); err != nil {
					log.Printf("download failed for %s/%s: %v", gloss, inst.VideoID, err)
					stats.Failed++
				} else {
					stats.Downloaded++
				}
			}

			if d.OnProgress != nil {
				d.OnProgress()
			}
		}
	}

	return stats, nil
}

// fetchWithYtDlp downloads a single video via the yt-dlp CLI.
func fetchWithYtDlp(ctx context.Context, url, outTemplate string) error {
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--format", "best",
		"--no-progress",
		"--output", outTemplate,
		url,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
