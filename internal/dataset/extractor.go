package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/bhoomipatni/TheHandStand/internal/detector"
)

// videoExtensions are the file types treated as input videos.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// Keypoints is the per-frame flattened landmark vector for one video.
type Keypoints struct {
	Gloss  string      `json:"gloss"`
	Video  string      `json:"video"`
	Frames [][]float64 `json:"frames"`
}

// VideoProcessor extracts per-frame keypoints from one video file.
// Production uses the MediaPipe-backed processor; tests substitute a
// fake.
type VideoProcessor interface {
	ProcessVideo(ctx context.Context, path string) ([][]float64, error)
}

// Extractor walks a directory of videos and writes one keypoint JSON
// file per video.
type Extractor struct {
	processor VideoProcessor

	// OnFile, when set, is called after each video is processed.
	OnFile func(path string)
}

// NewExtractor creates an Extractor using the given processor.
func NewExtractor(processor VideoProcessor) *Extractor {
	return &Extractor{processor: processor}
}

// ExtractDir processes every video under inDir and writes one JSON file
// per input under outDir, mirroring the gloss directory layout. The
// output name is the input name with its extension replaced by .json.
// Returns the number of files written.
func (e *Extractor) ExtractDir(ctx context.Context, inDir, outDir string) (int, error) {
	written := 0

	err := filepath.WalkDir(inDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		frames, err := e.processor.ProcessVideo(ctx, path)
		if err != nil {
			return fmt.Errorf("process %s: %w", path, err)
		}

		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}

		base := strings.TrimSuffix(rel, filepath.Ext(rel))
		outPath := filepath.Join(outDir, base+".json")
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		kp := Keypoints{
			Gloss:  glossOf(rel),
			Video:  filepath.Base(path),
			Frames: frames,
		}
		data, err := json.Marshal(kp)
		if err != nil {
			return fmt.Errorf("encode keypoints: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return fmt.Errorf("write keypoints: %w", err)
		}

		written++
		if e.OnFile != nil {
			e.OnFile(path)
		}
		return nil
	})
	if err != nil {
		return written, err
	}

	return written, nil
}

// CountVideos returns how many video files live under dir, for progress
// reporting before a full extraction.
func CountVideos(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && videoExtensions[strings.ToLower(filepath.Ext(path))] {
			count++
		}
		return nil
	})
	return count, err
}

// glossOf derives the gloss label from a video's path relative to the
// input root: the first directory component, or "" for top-level files.
func glossOf(rel string) string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	parts := strings.Split(dir, string(filepath.Separator))
	return parts[0]
}

// MediaPipeProcessor extracts keypoints by running each video's frames
// through a hand detector.
type MediaPipeProcessor struct {
	detector detector.Detector

	// FrameStride samples every Nth frame; 1 keeps them all.
	FrameStride int
}

// NewMediaPipeProcessor creates a processor over the given detector.
func NewMediaPipeProcessor(det detector.Detector) *MediaPipeProcessor {
	return &MediaPipeProcessor{detector: det, FrameStride: 2}
}

// ProcessVideo reads a video and returns the flattened keypoints for
// every sampled frame where at least one hand is visible.
func (p *MediaPipeProcessor) ProcessVideo(ctx context.Context, path string) ([][]float64, error) {
	video, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer video.Close()

	stride := p.FrameStride
	if stride < 1 {
		stride = 1
	}

	var frames [][]float64
	mat := gocv.NewMat()
	defer mat.Close()

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok := video.Read(&mat); !ok {
			break
		}
		if mat.Empty() || i%stride != 0 {
			continue
		}

		hands, err := p.detector.Detect(&mat)
		if err != nil {
			return nil, fmt.Errorf("detect hands: %w", err)
		}
		if len(hands) == 0 {
			continue
		}

		frames = append(frames, detector.Flatten(hands))
	}

	return frames, nil
}
