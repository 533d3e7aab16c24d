package dataset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Sample is one gloss-labeled keypoint sequence loaded from an
// extracted JSON file.
type Sample struct {
	Gloss  string
	Video  string
	Frames [][]float64
}

// Load reads every extracted keypoint file under dir. Samples missing a
// stored gloss fall back to their directory name.
func Load(dir string) ([]Sample, error) {
	var samples []Sample

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var kp Keypoints
		if err := json.Unmarshal(data, &kp); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		gloss := kp.Gloss
		if gloss == "" {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			gloss = glossOf(rel)
		}
		if gloss == "" {
			return fmt.Errorf("%s: no gloss label", path)
		}

		samples = append(samples, Sample{
			Gloss:  strings.ToLower(gloss),
			Video:  kp.Video,
			Frames: kp.Frames,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no keypoint files under %s", dir)
	}
	return samples, nil
}
