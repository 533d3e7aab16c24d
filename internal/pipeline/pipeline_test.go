package pipeline

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bhoomipatni/TheHandStand/internal/classifier"
	"github.com/bhoomipatni/TheHandStand/internal/config"
	"github.com/bhoomipatni/TheHandStand/internal/detector"
	"github.com/bhoomipatni/TheHandStand/internal/store"
)

// fakeTranslator records improve calls and uppercases its input.
type fakeTranslator struct {
	calls []string
}

func (f *fakeTranslator) ImproveSentence(_ context.Context, sentence string) string {
	f.calls = append(f.calls, sentence)
	return strings.ToUpper(sentence)
}

func (f *fakeTranslator) TranslateText(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

// fakeSpeaker records spoken text.
type fakeSpeaker struct {
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.spoken = append(f.spoken, text)
	return nil
}

// poseClassifier builds a classifier whose centroids are the three mock
// detector poses.
func poseClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()

	poses := []struct {
		label string
		hands []detector.HandLandmarks
	}{
		{"hello", []detector.HandLandmarks{detector.OpenPalmLandmarks()}},
		{"i_love_you", []detector.HandLandmarks{detector.ILoveYouLandmarks()}},
		{"yes", []detector.HandLandmarks{detector.FistLandmarks()}},
	}

	raw := make([][]float64, len(poses))
	labels := make([]string, len(poses))
	for i, p := range poses {
		features, err := classifier.ExtractFeatures(detector.Flatten(p.hands))
		if err != nil {
			t.Fatalf("ExtractFeatures(%s) error = %v", p.label, err)
		}
		raw[i] = features
		labels[i] = p.label
	}

	n := classifier.NumGeometricFeatures
	mean := make([]float64, n)
	std := make([]float64, n)
	for i := 0; i < n; i++ {
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

	m := &classifier.Model{Labels: labels, Mean: mean, Std: std}
	for _, f := range raw {
		m.Centroids = append(m.Centroids, m.Scale(f))
	}
	return classifier.New(m)
}

func newTestPipeline(t *testing.T, det detector.Detector, opts ...Option) *Pipeline {
	t.Helper()
	return New(det, poseClassifier(t), config.DefaultPrediction(), opts...)
}

func TestProcessFrame_IdleNoHand(t *testing.T) {
	det := detector.NewMockDetector()
	p := newTestPipeline(t, det)

	r := p.ProcessFrame(context.Background(), nil)

	if !r.Success {
		t.Fatal("expected success for idle frame")
	}
	if r.Translation == nil || *r.Translation != msgIdle {
		t.Errorf("translation = %v, want idle prompt", r.Translation)
	}
	if r.GestureCount == nil || *r.GestureCount != 0 {
		t.Errorf("gesture_count = %v, want 0", r.GestureCount)
	}
	if r.DetectionActive {
		t.Error("detection_active = true, want false")
	}
}

func TestProcessFrame_IdleHandIsLivePreview(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	p := newTestPipeline(t, det)

	r := p.ProcessFrame(context.Background(), nil)

	if !r.Success || !r.LivePreview {
		t.Fatalf("result = %+v, want successful live preview", r)
	}
	if r.Gesture == nil || *r.Gesture != "hello" {
		t.Errorf("gesture = %v, want %q", r.Gesture, "hello")
	}
	if r.GestureCount != nil {
		t.Error("live preview must not carry a gesture count")
	}
	if p.GestureCount() != 0 {
		t.Errorf("GestureCount() = %d, want 0 after preview", p.GestureCount())
	}
}

func TestProcessFrame_ActiveNoHandListens(t *testing.T) {
	det := detector.NewMockDetector()
	p := newTestPipeline(t, det)

	p.StartDetection()
	r := p.ProcessFrame(context.Background(), nil)

	if !r.Success || !r.DetectionActive {
		t.Fatalf("result = %+v, want active success", r)
	}
	if r.Translation == nil || *r.Translation != msgListening {
		t.Errorf("translation = %v, want listening message", r.Translation)
	}
}

func TestProcessFrame_ConfirmedDetection(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.ILoveYouLandmarks()})
	translator := &fakeTranslator{}
	speaker := &fakeSpeaker{}

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	p := newTestPipeline(t, det,
		WithTranslator(translator),
		WithSpeaker(speaker),
		WithDetectionStore(s.Detections()),
	)

	p.StartDetection()
	r := p.ProcessFrame(context.Background(), nil)

	if !r.Success {
		t.Fatalf("result = %+v, want success", r)
	}
	if r.Gesture == nil || *r.Gesture != "I love you" {
		t.Errorf("gesture = %v, want display name %q", r.Gesture, "I love you")
	}
	if r.Translation == nil || *r.Translation != "I LOVE YOU" {
		t.Errorf("translation = %v, want improved sentence", r.Translation)
	}
	if r.GestureCount == nil || *r.GestureCount != 1 {
		t.Errorf("gesture_count = %v, want 1", r.GestureCount)
	}
	if r.LivePreview {
		t.Error("confirmed detection flagged as live preview")
	}
	if !r.AutoStopped || r.DetectionActive {
		t.Error("detection should auto-stop after a confirmed sign")
	}
	if !r.SpeechPlayed || len(speaker.spoken) != 1 || speaker.spoken[0] != "I LOVE YOU" {
		t.Errorf("spoken = %v, want the improved sentence", speaker.spoken)
	}
	if p.DetectionActive() {
		t.Error("DetectionActive() = true after auto-stop")
	}

	detections, err := s.Detections().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(detections) != 1 || detections[0].Gesture != "i_love_you" {
		t.Errorf("stored detections = %+v, want one i_love_you record", detections)
	}
}

func TestProcessFrame_UnconfirmedWhileActiveIsPreview(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})

	cfg := config.DefaultPrediction()
	cfg.ConfirmThreshold = 0.99 // unreachable, every prediction stays advisory
	p := New(det, poseClassifier(t), cfg)

	p.StartDetection()
	r := p.ProcessFrame(context.Background(), nil)

	if !r.Success || !r.LivePreview {
		t.Fatalf("result = %+v, want live preview", r)
	}
	if !r.DetectionActive {
		t.Error("unconfirmed preview must not stop detection")
	}
	if p.GestureCount() != 0 {
		t.Errorf("GestureCount() = %d, want 0", p.GestureCount())
	}
}

func TestProcessFrame_DetectorError(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetError(errors.New("camera unplugged"))
	p := newTestPipeline(t, det)

	r := p.ProcessFrame(context.Background(), nil)

	if r.Success {
		t.Error("expected success=false on detector error")
	}
	if r.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestProcessFrame_SpeechFailureStillSucceeds(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	speaker := &fakeSpeaker{err: errors.New("no audio device")}

	p := newTestPipeline(t, det, WithSpeaker(speaker))
	p.StartDetection()

	r := p.ProcessFrame(context.Background(), nil)

	if !r.Success {
		t.Fatal("speech failure must not fail the frame")
	}
	if r.SpeechPlayed {
		t.Error("speech_played = true despite speaker error")
	}
}

func TestStartStopReset(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	p := newTestPipeline(t, det)

	p.StartDetection()
	if !p.DetectionActive() {
		t.Fatal("DetectionActive() = false after start")
	}

	p.StopDetection()
	if p.DetectionActive() {
		t.Fatal("DetectionActive() = true after stop")
	}

	p.StartDetection()
	p.ProcessFrame(context.Background(), nil) // confirmed, count = 1
	if p.GestureCount() != 1 {
		t.Fatalf("GestureCount() = %d, want 1", p.GestureCount())
	}

	p.Reset()
	if p.GestureCount() != 0 || p.DetectionActive() {
		t.Error("Reset() did not clear session state")
	}
}

func TestProcessFrame_SpellingMode(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.OpenPalmLandmarks()})
	translator := &fakeTranslator{}
	speaker := &fakeSpeaker{}

	cfg := config.DefaultPrediction()
	cfg.LetterHoldTime = 0 // commit on the second steady observation
	cfg.WordGapTime = 0    // any pause commits the word

	p := New(det, poseClassifier(t), cfg,
		WithTranslator(translator),
		WithSpeaker(speaker),
		WithSpellingMode(),
	)
	p.StartDetection()

	// First observation starts the hold, second commits the letter
	r := p.ProcessFrame(context.Background(), nil)
	if !r.LivePreview {
		t.Fatalf("first spelling frame = %+v, want preview", r)
	}
	r = p.ProcessFrame(context.Background(), nil)
	if r.LivePreview {
		t.Fatalf("second spelling frame = %+v, want committed letter", r)
	}
	if r.GestureCount == nil || *r.GestureCount != 1 {
		t.Errorf("gesture_count = %v, want 1", r.GestureCount)
	}
	if r.DetectionActive != true {
		t.Error("spelling mode must not auto-stop")
	}

	// Hand disappears: the word commits and the sentence is translated
	// and spoken
	det.SetHands(nil)
	r = p.ProcessFrame(context.Background(), nil)

	if r.Translation == nil || *r.Translation != "HELLO" {
		t.Errorf("translation = %v, want improved sentence %q", r.Translation, "HELLO")
	}
	if len(speaker.spoken) != 1 || speaker.spoken[0] != "HELLO" {
		t.Errorf("spoken = %v, want the committed sentence", speaker.spoken)
	}
}

func TestPipeline_Listeners(t *testing.T) {
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{detector.ILoveYouLandmarks()})

	var confirmed []string
	var active []bool
	p := newTestPipeline(t, det,
		WithOnConfirmed(func(name string) { confirmed = append(confirmed, name) }),
		WithOnActiveChange(func(a bool) { active = append(active, a) }),
	)

	p.StartDetection()
	r := p.ProcessFrame(context.Background(), nil)
	if !r.Success || !r.AutoStopped {
		t.Fatalf("result = %+v, want confirmed auto-stopped detection", r)
	}

	if len(confirmed) != 1 || confirmed[0] != "I love you" {
		t.Errorf("confirmed = %v, want the display name once", confirmed)
	}

	// Start, then the auto-stop after the confirmed sign
	want := []bool{true, false}
	if len(active) != len(want) {
		t.Fatalf("active = %v, want %v", active, want)
	}
	for i := range want {
		if active[i] != want[i] {
			t.Fatalf("active = %v, want %v", active, want)
		}
	}

	p.StopDetection()
	if len(active) != 3 || active[2] != false {
		t.Errorf("active = %v, want explicit stop appended", active)
	}
}
