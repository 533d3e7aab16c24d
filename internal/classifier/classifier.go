package classifier

import (
	"math"
)

// UnknownGesture is the sentinel label returned when a predicted class
// has no name.
const UnknownGesture = "Unknown"

// DefaultConfidenceThreshold is the minimum confidence for a prediction
// to be returned at all.
const DefaultConfidenceThreshold = 0.5

// Prediction is a single-frame classification result.
type Prediction struct {
	Gesture    string
	Confidence float64
}

// Classifier predicts static signs from hand landmark keypoints using a
// nearest-centroid model over geometric features.
type Classifier struct {
	model     *Model
	threshold float64
}

// New creates a Classifier for the given model.
func New(model *Model) *Classifier {
	return &Classifier{
		model:     model,
		threshold: DefaultConfidenceThreshold,
	}
}

// SetConfidenceThreshold adjusts the minimum confidence for predictions.
// The value is clamped to [0.1, 0.95].
func (c *Classifier) SetConfidenceThreshold(threshold float64) {
	c.threshold = clamp(threshold, 0.1, 0.95)
}

// Labels returns the class labels the model can predict.
func (c *Classifier) Labels() []string {
	return c.model.Labels
}

// Predict classifies a single frame of keypoints. Returns nil when no
// class reaches the confidence threshold. The error is non-nil only for
// malformed input.
func (c *Classifier) Predict(keypoints []float64) (*Prediction, error) {
	features, err := ExtractFeatures(keypoints)
	if err != nil {
		return nil, err
	}

	scaled := c.model.Scale(features)

	// Score each centroid with the inverse-distance score 1/(1+d),
	// then normalize the scores into a confidence distribution.
	scores := make([]float64, len(c.model.Centroids))
	var total float64
	best := -1
	for i, centroid := range c.model.Centroids {
		d := euclideanDistance(scaled, centroid)
		scores[i] = 1.0 / (1.0 + d)
		total += scores[i]
		if best < 0 || scores[i] > scores[best] {
			best = i
		}
	}

	if best < 0 || total == 0 {
		return nil, nil
	}

	confidence := scores[best] / total
	if confidence < c.threshold {
		return nil, nil
	}

	gesture := UnknownGesture
	if best < len(c.model.Labels) {
		gesture = c.model.Labels[best]
	}

	return &Prediction{
		Gesture:    gesture,
		Confidence: confidence,
	}, nil
}

// euclideanDistance calculates the Euclidean distance between two
// feature vectors of equal length.
func euclideanDistance(a, b []float64) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// DisplayNames maps internal gesture labels to human-readable names for
// the UI and speech output.
var DisplayNames = map[string]string{
	"i_love_you": "I love you",
	"thank_you":  "thank you",
	"hello":      "hello",
	"help":       "help",
	"no":         "no",
	"please":     "please",
	"yes":        "yes",
}

// DisplayName returns the display name for a gesture label, falling back
// to the label itself.
func DisplayName(gesture string) string {
	if name, ok := DisplayNames[gesture]; ok {
		return name
	}
	return gesture
}
