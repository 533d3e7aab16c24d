// Package pipeline runs the live sign recognition flow: hand detection,
// classification, word building, translation, and speech.
package pipeline

import (
	"context"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/config"
	"github.com/bhoomipatni/TheHandStand/internal/detector"
	"github.com/bhoomipatni/TheHandStand/internal/speech"
	"github.com/bhoomipatni/TheHandStand/internal/store"
	"github.com/bhoomipatni/TheHandStand/internal/translate"
	"github.com/bhoomipatni/TheHandStand/internal/words"
)

// Status messages surfaced through the translation field.
const (
	msgIdle      = `Press "Start Detection" to begin`
	msgListening = "Listening for gesture..."
)

// Pipeline owns the detection session state and coordinates the
// recognition stages for each incoming frame. Safe for concurrent use.
type Pipeline struct {
	detector   detector.Detector
	classifier *classifier.Classifier
	translator translate.Translator
	speaker    speech.Speaker
	detections *store.DetectionRepository
	cfg        config.Prediction

	mu              sync.Mutex
	detectionActive bool
	gestureCount    int

	// Continuous finger-spelling mode accumulates letters into words
	// instead of auto-stopping after one sign.
	spelling     bool
	builder      *words.Builder
	lastSentence string

	onConfirmed    func(name string)
	onActiveChange func(active bool)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTranslator sets the sentence translator.
func WithTranslator(t translate.Translator) Option {
	return func(p *Pipeline) {
		p.translator = t
	}
}

// WithSpeaker sets the speech synthesizer.
func WithSpeaker(s speech.Speaker) Option {
	return func(p *Pipeline) {
		p.speaker = s
	}
}

// WithDetectionStore records confirmed detections to the given
// repository.
func WithDetectionStore(r *store.DetectionRepository) Option {
	return func(p *Pipeline) {
		p.detections = r
	}
}

// WithSpellingMode enables continuous finger-spelling: confirmed letters
// accumulate into words rather than stopping detection after one sign.
func WithSpellingMode() Option {
	return func(p *Pipeline) {
		p.spelling = true
	}
}

// WithOnConfirmed registers fn to run after every confirmed detection
// with the sign's display name. Invoked synchronously; fn must not call
// back into the Pipeline.
func WithOnConfirmed(fn func(name string)) Option {
	return func(p *Pipeline) {
		p.onConfirmed = fn
	}
}

// WithOnActiveChange registers fn to run whenever detection starts or
// stops, including the auto-stop after a confirmed sign. Invoked
// synchronously; fn must not call back into the Pipeline.
func WithOnActiveChange(fn func(active bool)) Option {
	return func(p *Pipeline) {
		p.onActiveChange = fn
	}
}

// New creates a Pipeline with the given detector and classifier. The
// translator and speaker are optional; without them confirmed gestures
// pass through untranslated and silent.
func New(det detector.Detector, cls *classifier.Classifier, cfg config.Prediction, opts ...Option) *Pipeline {
	cls.SetConfidenceThreshold(cfg.ConfidenceThreshold)

	p := &Pipeline{
		detector:   det,
		classifier: cls,
		cfg:        cfg,
		builder: words.NewBuilder(words.Config{
			SmoothingWindow: cfg.SmoothingWindow,
			LetterHoldTime:  cfg.LetterHoldTime,
			WordGapTime:     cfg.WordGapTime,
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFrame runs one frame through the recognition stages and returns
// the classification result. Errors are reported in the result rather
// than returned, so one bad frame never breaks the caller's loop.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame *gocv.Mat) *Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	hands, err := p.detector.Detect(frame)
	if err != nil {
		return &Result{
			Success:         false,
			Error:           "hand detection failed: " + err.Error(),
			DetectionActive: p.detectionActive,
		}
	}

	if len(hands) == 0 {
		return p.noGestureLocked(ctx)
	}

	pred, err := p.classifier.Predict(detector.Flatten(hands))
	if err != nil {
		return &Result{
			Success:         false,
			Error:           "classification failed: " + err.Error(),
			DetectionActive: p.detectionActive,
		}
	}
	if pred == nil {
		return p.noGestureLocked(ctx)
	}

	if p.spelling && p.detectionActive {
		return p.spellLocked(ctx, pred)
	}

	// Below the confirm threshold, or while idle, the prediction is
	// advisory only
	if !p.detectionActive || pred.Confidence < p.cfg.ConfirmThreshold {
		return &Result{
			Success:         true,
			Gesture:         strPtr(classifier.DisplayName(pred.Gesture)),
			Confidence:      floatPtr(pred.Confidence),
			DetectionActive: p.detectionActive,
			LivePreview:     true,
		}
	}

	return p.confirmLocked(ctx, pred)
}

// noGestureLocked builds the result for a frame with no usable gesture.
func (p *Pipeline) noGestureLocked(ctx context.Context) *Result {
	if p.spelling && p.detectionActive {
		// A long enough pause commits the pending word
		p.builder.Observe("")
		if r := p.sentenceProgressLocked(ctx); r != nil {
			return r
		}
	}

	if p.detectionActive {
		return &Result{
			Success:         true,
			Translation:     strPtr(msgListening),
			DetectionActive: true,
		}
	}

	return &Result{
		Success:         true,
		Translation:     strPtr(msgIdle),
		GestureCount:    intPtr(p.gestureCount),
		DetectionActive: false,
	}
}

// confirmLocked handles a confirmed single-sign detection: translation,
// speech, persistence, and auto-stop.
func (p *Pipeline) confirmLocked(ctx context.Context, pred *classifier.Prediction) *Result {
	display := classifier.DisplayName(pred.Gesture)
	p.gestureCount++

	improved := display
	if p.translator != nil {
		if t := p.translator.ImproveSentence(ctx, display); t != "" {
			improved = t
		}
	}

	spoken := false
	if p.speaker != nil {
		if err := p.speaker.Speak(ctx, improved); err != nil {
			log.Printf("speech failed for %q: %v", improved, err)
		} else {
			spoken = true
		}
	}

	if p.detections != nil {
		err := p.detections.Create(&store.Detection{
			Gesture:     pred.Gesture,
			Confidence:  pred.Confidence,
			Translation: improved,
		})
		if err != nil {
			log.Printf("failed to record detection %q: %v", pred.Gesture, err)
		}
	}

	// One sign per session: stop automatically after a confirmed hit
	p.detectionActive = false

	if p.onConfirmed != nil {
		p.onConfirmed(display)
	}
	if p.onActiveChange != nil {
		p.onActiveChange(false)
	}

	return &Result{
		Success:         true,
		Gesture:         strPtr(display),
		Confidence:      floatPtr(pred.Confidence),
		Translation:     strPtr(improved),
		GestureCount:    intPtr(p.gestureCount),
		DetectionActive: false,
		AutoStopped:     true,
		SpeechPlayed:    spoken,
	}
}

// spellLocked feeds a prediction into the word builder during continuous
// spelling.
func (p *Pipeline) spellLocked(ctx context.Context, pred *classifier.Prediction) *Result {
	committed := p.builder.Observe(pred.Gesture)
	if committed != "" {
		p.gestureCount++
	}

	if r := p.sentenceProgressLocked(ctx); r != nil {
		return r
	}

	return &Result{
		Success:         true,
		Gesture:         strPtr(classifier.DisplayName(pred.Gesture)),
		Confidence:      floatPtr(pred.Confidence),
		GestureCount:    intPtr(p.gestureCount),
		DetectionActive: true,
		LivePreview:     committed == "",
	}
}

// sentenceProgressLocked reports a newly committed sentence, translated
// and spoken, or nil when the sentence has not changed.
func (p *Pipeline) sentenceProgressLocked(ctx context.Context) *Result {
	sentence := p.builder.Sentence()
	if sentence == "" || sentence == p.lastSentence {
		return nil
	}
	p.lastSentence = sentence

	improved := sentence
	if p.translator != nil {
		if t := p.translator.ImproveSentence(ctx, sentence); t != "" {
			improved = t
		}
	}

	spoken := false
	if p.speaker != nil {
		if err := p.speaker.Speak(ctx, improved); err != nil {
			log.Printf("speech failed for %q: %v", improved, err)
		} else {
			spoken = true
		}
	}

	return &Result{
		Success:         true,
		Translation:     strPtr(improved),
		GestureCount:    intPtr(p.gestureCount),
		DetectionActive: true,
		SpeechPlayed:    spoken,
	}
}

// StartDetection activates gesture detection for the next confirmed
// sign.
func (p *Pipeline) StartDetection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detectionActive = true
	p.builder.Reset()
	p.lastSentence = ""
	if p.onActiveChange != nil {
		p.onActiveChange(true)
	}
}

// StopDetection deactivates gesture detection.
func (p *Pipeline) StopDetection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detectionActive = false
	if p.onActiveChange != nil {
		p.onActiveChange(false)
	}
}

// DetectionActive reports whether detection is currently active.
func (p *Pipeline) DetectionActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detectionActive
}

// GestureCount returns the number of confirmed detections this session.
func (p *Pipeline) GestureCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gestureCount
}

// Reset clears session state: the count, the word builder, and the
// active flag.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detectionActive = false
	p.gestureCount = 0
	p.builder.Reset()
	p.lastSentence = ""
	if p.onActiveChange != nil {
		p.onActiveChange(false)
	}
}

// Speak voices arbitrary text through the configured synthesizer.
func (p *Pipeline) Speak(ctx context.Context, text string) error {
	if p.speaker == nil {
		return nil
	}
	return p.speaker.Speak(ctx, text)
}

// Close releases the detector resources.
func (p *Pipeline) Close() error {
	return p.detector.Close()
}
