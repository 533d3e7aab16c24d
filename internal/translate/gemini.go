// Package translate turns raw gesture sequences into natural language
// using the Gemini generative API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bhoomipatni/TheHandStand/internal/retry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultModel is the generative model used for all prompts.
const defaultModel = "gemini-pro"

// Translator rewrites gesture sequences and translates text. Implemented
// by GeminiTranslator and by test fakes.
type Translator interface {
	ImproveSentence(ctx context.Context, sentence string) string
	TranslateText(ctx context.Context, text, targetLanguage string) (string, error)
}

// GeminiTranslator is a REST client for the Gemini generateContent API.
// A zero API key disables the client: ImproveSentence passes input
// through and TranslateText returns an error.
type GeminiTranslator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	retry   retry.Config
}

// Option configures a GeminiTranslator.
type Option func(*GeminiTranslator)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(url string) Option {
	return func(t *GeminiTranslator) {
		t.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *GeminiTranslator) {
		t.client = c
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(t *GeminiTranslator) {
		t.retry = cfg
	}
}

// NewGeminiTranslator creates a translator authenticated with the given
// API key.
func NewGeminiTranslator(apiKey string, opts ...Option) *GeminiTranslator {
	t := &GeminiTranslator{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ImproveSentence rewrites a space-joined gesture sequence into natural
// English. Single words and empty input pass through unchanged, and any
// API failure falls back to the input so recognition never blocks on the
// translator.
func (t *GeminiTranslator) ImproveSentence(ctx context.Context, sentence string) string {
	trimmed := strings.TrimSpace(sentence)
	if trimmed == "" || t.apiKey == "" {
		return sentence
	}
	if len(strings.Fields(trimmed)) == 1 {
		return sentence
	}

	prompt := fmt.Sprintf(`Improve this ASL gesture sequence into natural English:
%q

Make it a clear, natural-sounding sentence.
Use correct grammar and add missing connecting words.
Return ONLY the improved sentence.`, trimmed)

	improved, err := t.generate(ctx, prompt)
	if err != nil {
		return sentence
	}

	improved = strings.Trim(strings.TrimSpace(improved), `"'`)
	if improved == "" {
		return sentence
	}
	return improved
}

// TranslateText translates text into the target language, given as an
// ISO code from SupportedLanguages.
func (t *GeminiTranslator) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if t.apiKey == "" {
		return "", fmt.Errorf("translator not configured: missing API key")
	}

	langName, ok := SupportedLanguages()[targetLanguage]
	if !ok {
		langName = "Spanish"
	}

	prompt := fmt.Sprintf("Translate this text to %s: '%s'. Return only the translation.", langName, text)

	translated, err := t.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", langName, err)
	}
	return strings.TrimSpace(translated), nil
}

// SupportedLanguages maps target language codes to display names.
func SupportedLanguages() map[string]string {
	return map[string]string{
		"es": "Spanish",
		"fr": "French",
		"de": "German",
		"it": "Italian",
		"pt": "Portuguese",
		"ja": "Japanese",
		"ko": "Korean",
		"zh": "Chinese",
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate posts a single-prompt generateContent request and returns the
// first candidate's text.
func (t *GeminiTranslator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", t.baseURL, t.model, t.apiKey)

	var text string
	err = retry.Do(ctx, t.retry, isRetryable, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return &apiError{status: resp.StatusCode, body: string(data)}
		}

		var parsed generateResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
		if parsed.Error != nil {
			return &apiError{status: parsed.Error.Code, body: parsed.Error.Message}
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("empty response")
		}

		text = parsed.Candidates[0].Content.Parts[0].Text
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.status, e.body)
}

// isRetryable retries server-side and rate-limit failures but not client
// errors.
func isRetryable(err error) bool {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.status >= 500 || apiErr.status == http.StatusTooManyRequests
	}
	// Transport errors are worth retrying
	return true
}
