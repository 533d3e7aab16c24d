package pipeline

// Result is the classification result for one processed frame. Optional
// fields are pointers so absent values are omitted on the wire.
type Result struct {
	Success         bool     `json:"success"`
	Gesture         *string  `json:"gesture,omitempty"`
	Confidence      *float64 `json:"confidence,omitempty"`
	Translation     *string  `json:"translation,omitempty"`
	GestureCount    *int     `json:"gesture_count,omitempty"`
	DetectionActive bool     `json:"detection_active"`
	LivePreview     bool     `json:"live_preview"`
	AutoStopped     bool     `json:"auto_stopped,omitempty"`
	SpeechPlayed    bool     `json:"speech_played,omitempty"`
	Error           string   `json:"error,omitempty"`
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(n int) *int {
	return &n
}
