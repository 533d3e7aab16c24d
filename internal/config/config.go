// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Camera capture defaults.
const (
	DefaultCameraID     = 0
	DefaultCameraWidth  = 640
	DefaultCameraHeight = 480
)

// Prediction holds thresholds and timing for gesture recognition.
type Prediction struct {
	// ConfidenceThreshold is the minimum classifier confidence for a
	// prediction to be reported at all (below it, nothing is returned).
	ConfidenceThreshold float64

	// ConfirmThreshold is the minimum confidence for a prediction to be
	// treated as a confirmed detection rather than a live preview.
	ConfirmThreshold float64

	// LetterHoldTime is how long a letter must be held before it is
	// committed to the current word.
	LetterHoldTime time.Duration

	// WordGapTime is the pause that commits the current word.
	WordGapTime time.Duration

	// SmoothingWindow is the number of recent predictions used for
	// majority-vote smoothing.
	SmoothingWindow int
}

// DefaultPrediction returns the prediction configuration used by the
// live pipeline.
func DefaultPrediction() Prediction {
	return Prediction{
		ConfidenceThreshold: 0.15,
		ConfirmThreshold:    0.5,
		LetterHoldTime:      time.Second,
		WordGapTime:         2 * time.Second,
		SmoothingWindow:     5,
	}
}

// Config holds the environment-derived application configuration.
type Config struct {
	GeminiAPIKey      string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsAgentID string

	CameraID int
	Port     int

	Prediction Prediction
}

// Load reads configuration from a .env file (if present) and the
// environment. A missing .env file is not an error.
func Load() Config {
	// Values already in the environment take precedence over .env.
	godotenv.Load()

	return Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsAgentID: os.Getenv("ELEVENLABS_AGENT_ID"),
		CameraID:          envInt("CAMERA_ID", DefaultCameraID),
		Port:              envInt("PORT", 5001),
		Prediction:        DefaultPrediction(),
	}
}

// envInt reads an integer environment variable, falling back to def when
// unset or malformed.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
