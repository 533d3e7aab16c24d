// Package speech synthesizes spoken audio for recognized signs using the
// ElevenLabs API, with a local text-to-speech fallback.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/bhoomipatni/TheHandStand/internal/retry"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// DefaultVoiceID is the Rachel voice, a natural female voice.
const DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

const modelID = "eleven_monolingual_v1"

// Speaker voices text. Implemented by Synthesizer and by test fakes.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// VoiceSettings tune the ElevenLabs voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the standard voice tuning.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.5,
		Style:           0.0,
		UseSpeakerBoost: true,
	}
}

// Synthesizer is an ElevenLabs text-to-speech client. Without an API key
// it degrades to the local fallback chain instead of erroring, so speech
// never blocks recognition.
type Synthesizer struct {
	apiKey   string
	voiceID  string
	baseURL  string
	settings VoiceSettings
	client   *http.Client
	retry    retry.Config

	// play renders mp3 audio bytes; replaced in tests.
	play func(audio []byte) error
	// fallback speaks text without the API; replaced in tests.
	fallback func(text string) error
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithVoice overrides the default voice.
func WithVoice(voiceID string) Option {
	return func(s *Synthesizer) {
		if voiceID != "" {
			s.voiceID = voiceID
		}
	}
}

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(url string) Option {
	return func(s *Synthesizer) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithVoiceSettings overrides the voice tuning.
func WithVoiceSettings(settings VoiceSettings) Option {
	return func(s *Synthesizer) {
		s.settings = settings
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(s *Synthesizer) {
		s.retry = cfg
	}
}

// NewSynthesizer creates a Synthesizer authenticated with the given API
// key. An empty key is allowed and routes all speech to the fallback.
func NewSynthesizer(apiKey string, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		apiKey:   apiKey,
		voiceID:  DefaultVoiceID,
		baseURL:  defaultBaseURL,
		settings: DefaultVoiceSettings(),
		client:   &http.Client{Timeout: 30 * time.Second},
		retry:    retry.DefaultConfig(),
	}
	s.play = playAudio
	s.fallback = fallbackSpeak
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Speak converts text to speech and plays it. API failures fall back to
// the local speech chain.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if s.apiKey == "" {
		return s.fallback(text)
	}

	audio, err := s.synthesize(ctx, text)
	if err != nil {
		log.Printf("speech synthesis failed, using fallback: %v", err)
		return s.fallback(text)
	}

	if err := s.play(audio); err != nil {
		log.Printf("audio playback failed, using fallback: %v", err)
		return s.fallback(text)
	}
	return nil
}

// synthesize posts a text-to-speech request and returns mp3 bytes.
func (s *Synthesizer) synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       modelID,
		VoiceSettings: s.settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.voiceID)

	var audio []byte
	err = retry.Do(ctx, s.retry, isRetryable, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("xi-api-key", s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return &apiError{status: resp.StatusCode, body: string(msg)}
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}

// Voices lists the available ElevenLabs voices by ID.
func (s *Synthesizer) Voices(ctx context.Context) (map[string]string, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("speech not configured: missing API key")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &apiError{status: resp.StatusCode}
	}

	var parsed struct {
		Voices []struct {
			VoiceID string `json:"voice_id"`
			Name    string `json:"name"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse voices: %w", err)
	}

	voices := make(map[string]string, len(parsed.Voices))
	for _, v := range parsed.Voices {
		voices[v.VoiceID] = v.Name
	}
	return voices, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.status, e.body)
}

func isRetryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status >= 500 || apiErr.status == http.StatusTooManyRequests
	}
	return true
}

// playAudio writes mp3 bytes to a temp file and plays them with the
// first available local player.
func playAudio(audio []byte) error {
	f, err := os.CreateTemp("", "handstand-*.mp3")
	if err != nil {
		return fmt.Errorf("create temp audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("write audio: %w", err)
	}
	f.Close()

	players := [][]string{
		{"afplay", f.Name()},
		{"mpg123", "-q", f.Name()},
		{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", f.Name()},
	}
	for _, p := range players {
		if _, err := exec.LookPath(p[0]); err != nil {
			continue
		}
		return exec.Command(p[0], p[1:]...).Run()
	}
	return fmt.Errorf("no audio player found")
}

// fallbackSpeak voices text with the system speech tools when the API is
// unavailable.
func fallbackSpeak(text string) error {
	candidates := []string{"espeak"}
	if runtime.GOOS == "darwin" {
		candidates = []string{"say", "espeak"}
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		return exec.Command(name, text).Run()
	}
	log.Printf("speaking (no tts available): %s", text)
	return nil
}
