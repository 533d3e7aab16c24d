package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bhoomipatni/TheHandStand/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxRetries:      2,
		BaseDelay:       time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffMultiple: 2.0,
	}
}

// geminiStub serves canned generateContent responses and records the
// prompts it receives.
func geminiStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func promptFrom(t *testing.T, r *http.Request) string {
	t.Helper()
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
		t.Fatal("request has no prompt")
	}
	return req.Contents[0].Parts[0].Text
}

func TestImproveSentence(t *testing.T) {
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse(`"I love you, thank you for your help."`))
	})

	tr := NewGeminiTranslator("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	got := tr.ImproveSentence(context.Background(), "I love you thank you help")
	want := "I love you, thank you for your help."
	if got != want {
		t.Errorf("ImproveSentence() = %q, want %q", got, want)
	}
}

func TestImproveSentence_Passthrough(t *testing.T) {
	called := false
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		fmt.Fprint(w, candidateResponse("unexpected"))
	})

	tr := NewGeminiTranslator("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace only", "   "},
		{"single word", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.ImproveSentence(context.Background(), tt.input); got != tt.input {
				t.Errorf("ImproveSentence(%q) = %q, want input back", tt.input, got)
			}
		})
	}

	if called {
		t.Error("API was called for input that should pass through")
	}
}

func TestImproveSentence_NoAPIKey(t *testing.T) {
	tr := NewGeminiTranslator("")
	if got := tr.ImproveSentence(context.Background(), "hello thank you"); got != "hello thank you" {
		t.Errorf("ImproveSentence() = %q, want input back without a key", got)
	}
}

func TestImproveSentence_FallsBackOnError(t *testing.T) {
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	tr := NewGeminiTranslator("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	input := "please help me"
	if got := tr.ImproveSentence(context.Background(), input); got != input {
		t.Errorf("ImproveSentence() = %q, want input back on API failure", got)
	}
}

func TestTranslateText(t *testing.T) {
	var prompt string
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		prompt = promptFrom(t, r)
		fmt.Fprint(w, candidateResponse("  Hola  "))
	})

	tr := NewGeminiTranslator("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	got, err := tr.TranslateText(context.Background(), "hello", "es")
	if err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}
	if got != "Hola" {
		t.Errorf("TranslateText() = %q, want %q", got, "Hola")
	}
	if !strings.Contains(prompt, "Spanish") {
		t.Errorf("prompt %q does not name the target language", prompt)
	}
}

func TestTranslateText_UnknownLanguageDefaultsToSpanish(t *testing.T) {
	var prompt string
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		prompt = promptFrom(t, r)
		fmt.Fprint(w, candidateResponse("Hola"))
	})

	tr := NewGeminiTranslator("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	if _, err := tr.TranslateText(context.Background(), "hello", "xx"); err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}
	if !strings.Contains(prompt, "Spanish") {
		t.Errorf("prompt %q should default to Spanish", prompt)
	}
}

func TestTranslateText_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		tr := NewGeminiTranslator("")
		if _, err := tr.TranslateText(context.Background(), "hello", "es"); err == nil {
			t.Error("expected error without an API key")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		tr := NewGeminiTranslator("test-key")
		got, err := tr.TranslateText(context.Background(), "  ", "es")
		if err != nil || got != "" {
			t.Errorf("TranslateText(blank) = (%q, %v), want empty and nil", got, err)
		}
	})
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "try again", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, candidateResponse("Bonjour"))
	})

	tr := NewGeminiTranslator("test-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	got, err := tr.TranslateText(context.Background(), "hello", "fr")
	if err != nil {
		t.Fatalf("TranslateText() error = %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("TranslateText() = %q, want %q", got, "Bonjour")
	}
	if attempts != 2 {
		t.Errorf("server saw %d attempts, want 2", attempts)
	}
}

func TestGenerate_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := geminiStub(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "bad key", http.StatusForbidden)
	})

	tr := NewGeminiTranslator("bad-key", WithBaseURL(srv.URL), WithRetryConfig(fastRetry()))

	if _, err := tr.TranslateText(context.Background(), "hello", "es"); err == nil {
		t.Fatal("expected error for forbidden response")
	}
	if attempts != 1 {
		t.Errorf("server saw %d attempts, want 1", attempts)
	}
}

func TestSupportedLanguages(t *testing.T) {
	langs := SupportedLanguages()
	for code, want := range map[string]string{"es": "Spanish", "ja": "Japanese"} {
		if langs[code] != want {
			t.Errorf("SupportedLanguages()[%q] = %q, want %q", code, langs[code], want)
		}
	}
}
