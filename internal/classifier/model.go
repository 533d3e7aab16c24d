package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Model is a trained static sign model: a standard scaler plus one
// feature centroid per class. Centroids are stored in the scaler's
// standardized feature space.
type Model struct {
	Labels    []string    `json:"labels"`
	Mean      []float64   `json:"mean"`
	Std       []float64   `json:"std"`
	Centroids [][]float64 `json:"centroids"`
}

// Validate checks internal consistency of the model.
func (m *Model) Validate() error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("model has no labels")
	}
	if len(m.Labels) != len(m.Centroids) {
		return fmt.Errorf("model has %d labels but %d centroids", len(m.Labels), len(m.Centroids))
	}
	for i, c := range m.Centroids {
		if len(c) != NumGeometricFeatures {
			return fmt.Errorf("centroid %d has %d features, expected %d", i, len(c), NumGeometricFeatures)
		}
	}
	if len(m.Mean) != NumGeometricFeatures || len(m.Std) != NumGeometricFeatures {
		return fmt.Errorf("scaler has %d/%d values, expected %d", len(m.Mean), len(m.Std), NumGeometricFeatures)
	}
	return nil
}

// Scale standardizes a feature vector using the model's scaler.
func (m *Model) Scale(features []float64) []float64 {
	scaled := make([]float64, len(features))
	for i := range features {
		std := m.Std[i]
		if std < 1e-10 {
			std = 1
		}
		scaled[i] = (features[i] - m.Mean[i]) / std
	}
	return scaled
}

// LoadModel reads a model from a JSON file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// SaveModel writes a model to a JSON file, creating parent directories
// as needed.
func SaveModel(m *Model, path string) error {
	if err := m.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	return nil
}
