package client

import (
	"fmt"

	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/pipeline"
)

// Display markers for the gesture readout.
const (
	markerConfirmed = "● "
	markerPreview   = "○ "
)

// Empty display defaults.
const (
	defaultGesture    = "None"
	defaultConfidence = "0%"
)

// ViewConfig names the output targets explicitly instead of probing for
// their existence at apply time.
type ViewConfig struct {
	// TranslationDisplay routes translations to a dedicated display;
	// when false they fall back to the generic message line.
	TranslationDisplay bool
}

// View is the observable UI state produced by folding classification
// results. Not safe for concurrent use; the owning Session serializes
// access.
type View struct {
	cfg ViewConfig

	Gesture      string
	Confidence   string
	Translation  string
	Message      string
	GestureCount int
	Status       string
}

// NewView creates a View with empty display defaults.
func NewView(cfg ViewConfig) *View {
	return &View{
		cfg:        cfg,
		Gesture:    defaultGesture,
		Confidence: defaultConfidence,
	}
}

// Apply folds one classification result into the view. Precedence rules
// keep advisory live previews from perturbing confirmed state, so rapid
// or out-of-order responses never regress the display.
func (v *View) Apply(r *pipeline.Result) {
	if r == nil || !r.Success {
		return
	}

	if r.Translation != nil {
		if v.cfg.TranslationDisplay {
			v.Translation = *r.Translation
		} else {
			v.Message = *r.Translation
		}
	}

	switch {
	case r.Gesture != nil && *r.Gesture != "" && *r.Gesture != classifier.UnknownGesture:
		confidence := 0.0
		if r.Confidence != nil {
			confidence = *r.Confidence
		}
		pct := FormatConfidence(confidence)

		marker := markerConfirmed
		if r.LivePreview {
			marker = markerPreview
		}
		v.Gesture = marker + *r.Gesture
		v.Confidence = pct

		if !r.LivePreview {
			v.Message = fmt.Sprintf("Detected: %s (%s confident)", *r.Gesture, pct)
		}

	case !r.DetectionActive && !r.LivePreview:
		v.Gesture = defaultGesture
		v.Confidence = defaultConfidence
	}

	// Counts come from the backend verbatim; previews never touch them
	if r.GestureCount != nil && !r.LivePreview {
		v.GestureCount = *r.GestureCount
	}
}

// FormatConfidence renders a confidence fraction as a percentage with
// one decimal digit.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}
