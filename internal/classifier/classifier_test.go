package classifier

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/bhoomipatni/TheHandStand/internal/detector"
)

// poseModel builds a model from one sample per class, standardizing
// features across the samples.
func poseModel(t *testing.T, classes map[string][]detector.HandLandmarks) *Model {
	t.Helper()

	labels := make([]string, 0, len(classes))
	raw := make([][]float64, 0, len(classes))

	// Deterministic label order keeps assertions stable
	for _, label := range []string{"hello", "i_love_you", "yes"} {
		hands, ok := classes[label]
		if !ok {
			continue
		}
		features, err := ExtractFeatures(detector.Flatten(hands))
		if err != nil {
			t.Fatalf("ExtractFeatures(%s) error = %v", label, err)
		}
		labels = append(labels, label)
		raw = append(raw, features)
	}

	mean := make([]float64, NumGeometricFeatures)
	std := make([]float64, NumGeometricFeatures)
	for i := 0; i < NumGeometricFeatures; i++ {
		var sum float64
		for _, f := range raw {
			sum += f[i]
		}
		mean[i] = sum / float64(len(raw))

		var variance float64
		for _, f := range raw {
			d := f[i] - mean[i]
			variance += d * d
		}
		std[i] = math.Sqrt(variance / float64(len(raw)))
		if std[i] < 1e-10 {
			std[i] = 1
		}
	}

	m := &Model{Labels: labels, Mean: mean, Std: std}
	for _, f := range raw {
		m.Centroids = append(m.Centroids, m.Scale(f))
	}

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return m
}

func testModel(t *testing.T) *Model {
	return poseModel(t, map[string][]detector.HandLandmarks{
		"hello":      {detector.OpenPalmLandmarks()},
		"i_love_you": {detector.ILoveYouLandmarks()},
		"yes":        {detector.FistLandmarks()},
	})
}

func TestClassifier_Predict(t *testing.T) {
	c := New(testModel(t))

	tests := []struct {
		name string
		hand detector.HandLandmarks
		want string
	}{
		{"open palm is hello", detector.OpenPalmLandmarks(), "hello"},
		{"fist is yes", detector.FistLandmarks(), "yes"},
		{"i love you sign", detector.ILoveYouLandmarks(), "i_love_you"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := c.Predict(detector.Flatten([]detector.HandLandmarks{tt.hand}))
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if pred == nil {
				t.Fatal("expected a prediction, got nil")
			}
			if pred.Gesture != tt.want {
				t.Errorf("gesture = %q, want %q", pred.Gesture, tt.want)
			}
			if pred.Confidence <= 0 || pred.Confidence > 1 {
				t.Errorf("confidence = %f, want fraction in (0, 1]", pred.Confidence)
			}
		})
	}
}

func TestClassifier_Predict_BadInput(t *testing.T) {
	c := New(testModel(t))

	if _, err := c.Predict(make([]float64, 7)); err == nil {
		t.Error("expected error for malformed keypoint vector")
	}
}

func TestClassifier_Predict_BelowThreshold(t *testing.T) {
	c := New(testModel(t))
	c.SetConfidenceThreshold(0.95)

	// With an impossible threshold, even an exact match is suppressed:
	// confidence is normalized across classes and never reaches 0.95.
	pred, err := c.Predict(detector.Flatten([]detector.HandLandmarks{detector.OpenPalmLandmarks()}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred != nil {
		t.Errorf("expected nil prediction above threshold %f, got %+v", 0.95, pred)
	}
}

func TestClassifier_SetConfidenceThreshold_Clamped(t *testing.T) {
	c := New(testModel(t))

	c.SetConfidenceThreshold(2.0)
	if c.threshold != 0.95 {
		t.Errorf("threshold = %f, want clamped to 0.95", c.threshold)
	}

	c.SetConfidenceThreshold(-1)
	if c.threshold != 0.1 {
		t.Errorf("threshold = %f, want clamped to 0.1", c.threshold)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("i_love_you"); got != "I love you" {
		t.Errorf("DisplayName(i_love_you) = %q, want %q", got, "I love you")
	}
	if got := DisplayName("wave"); got != "wave" {
		t.Errorf("DisplayName(wave) = %q, want the label itself", got)
	}
}

func TestModel_SaveLoad(t *testing.T) {
	m := testModel(t)
	path := filepath.Join(t.TempDir(), "models", "static_classifier.json")

	if err := SaveModel(m, path); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	if len(loaded.Labels) != len(m.Labels) {
		t.Fatalf("loaded %d labels, want %d", len(loaded.Labels), len(m.Labels))
	}
	for i, label := range m.Labels {
		if loaded.Labels[i] != label {
			t.Errorf("label %d = %q, want %q", i, loaded.Labels[i], label)
		}
	}

	// A loaded model predicts the same as the original
	input := detector.Flatten([]detector.HandLandmarks{detector.FistLandmarks()})
	orig, _ := New(m).Predict(input)
	reloaded, _ := New(loaded).Predict(input)
	if orig == nil || reloaded == nil {
		t.Fatal("expected predictions from both models")
	}
	if orig.Gesture != reloaded.Gesture {
		t.Errorf("reloaded prediction = %q, want %q", reloaded.Gesture, orig.Gesture)
	}
}

func TestLoadModel_Invalid(t *testing.T) {
	if _, err := LoadModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing model file")
	}
}
