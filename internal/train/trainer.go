// Package train fits and evaluates the static sign classifier from
// extracted keypoint datasets.
package train

import (
	"fmt"
	"math"
	"sort"

	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/dataset"
)

// Train fits a nearest-centroid model: geometric features are extracted
// per frame, standardized over the whole corpus, and averaged per gloss.
func Train(samples []dataset.Sample) (*classifier.Model, error) {
	byGloss := make(map[string][][]float64)
	var all [][]float64

	for _, sample := range samples {
		for _, frame := range sample.Frames {
			features, err := classifier.ExtractFeatures(frame)
			if err != nil {
				return nil, fmt.Errorf("sample %s/%s: %w", sample.Gloss, sample.Video, err)
			}
			byGloss[sample.Gloss] = append(byGloss[sample.Gloss], features)
			all = append(all, features)
		}
	}

	if len(byGloss) < 2 {
		return nil, fmt.Errorf("need at least 2 glosses to train, got %d", len(byGloss))
	}

	mean, std := fitScaler(all)

	labels := make([]string, 0, len(byGloss))
	for gloss := range byGloss {
		labels = append(labels, gloss)
	}
	sort.Strings(labels)

	model := &classifier.Model{Labels: labels, Mean: mean, Std: std}
	for _, gloss := range labels {
		centroid := make([]float64, classifier.NumGeometricFeatures)
		for _, features := range byGloss[gloss] {
			scaled := model.Scale(features)
			for i, v := range scaled {
				centroid[i] += v
			}
		}
		n := float64(len(byGloss[gloss]))
		for i := range centroid {
			centroid[i] /= n
		}
		model.Centroids = append(model.Centroids, centroid)
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

// fitScaler computes the per-feature mean and standard deviation.
func fitScaler(features [][]float64) (mean, std []float64) {
	n := classifier.NumGeometricFeatures
	mean = make([]float64, n)
	std = make([]float64, n)

	for i := 0; i < n; i++ {
		var sum float64
		for _, f := range features {
			sum += f[i]
		}
		mean[i] = sum / float64(len(features))

		var variance float64
		for _, f := range features {
			d := f[i] - mean[i]
			variance += d * d
		}
		std[i] = math.Sqrt(variance / float64(len(features)))
		if std[i] < 1e-10 {
			std[i] = 1
		}
	}

	return mean, std
}

// GlossResult is the per-gloss evaluation breakdown.
type GlossResult struct {
	Total   int
	Correct int
}

// Report summarizes an evaluation run.
type Report struct {
	Total    int
	Correct  int
	Accuracy float64
	PerGloss map[string]GlossResult
}

// Evaluate classifies every sample with a majority vote over its frames
// and reports accuracy against the gloss labels.
func Evaluate(model *classifier.Model, samples []dataset.Sample) (*Report, error) {
	c := classifier.New(model)
	// Evaluation wants the raw nearest class, not a confidence gate
	c.SetConfidenceThreshold(0.1)

	report := &Report{PerGloss: make(map[string]GlossResult)}

	for _, sample := range samples {
		votes := make(map[string]int)
		for _, frame := range sample.Frames {
			pred, err := c.Predict(frame)
			if err != nil {
				return nil, fmt.Errorf("sample %s/%s: %w", sample.Gloss, sample.Video, err)
			}
			if pred != nil {
				votes[pred.Gesture]++
			}
		}

		predicted := ""
		for gesture, n := range votes {
			if predicted == "" || n > votes[predicted] {
				predicted = gesture
			}
		}

		report.Total++
		result := report.PerGloss[sample.Gloss]
		result.Total++
		if predicted == sample.Gloss {
			report.Correct++
			result.Correct++
		}
		report.PerGloss[sample.Gloss] = result
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
	}
	return report, nil
}
