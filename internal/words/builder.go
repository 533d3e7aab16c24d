// Package words assembles a stream of per-frame letter predictions into
// words and sentences.
package words

import (
	"strings"
	"sync"
	"time"
)

// Config controls prediction smoothing and word segmentation timing.
type Config struct {
	// SmoothingWindow is how many recent predictions vote on the
	// current letter.
	SmoothingWindow int

	// LetterHoldTime is how long a letter must be held steady before it
	// is committed to the current word.
	LetterHoldTime time.Duration

	// WordGapTime is how long without any hand before the current word
	// is committed to the sentence.
	WordGapTime time.Duration
}

// DefaultConfig returns the standard smoothing configuration.
func DefaultConfig() Config {
	return Config{
		SmoothingWindow: 5,
		LetterHoldTime:  time.Second,
		WordGapTime:     2 * time.Second,
	}
}

// Builder turns noisy per-frame letter predictions into committed words.
// Safe for concurrent use.
type Builder struct {
	mu     sync.Mutex
	cfg    Config
	now    func() time.Time
	window []string

	current     string    // letter currently being held
	currentFrom time.Time // when the current letter first appeared
	committed   bool      // current letter already added to the word

	word     strings.Builder
	sentence []string
	lastSeen time.Time // last time any hand was observed
}

// NewBuilder creates a Builder with the given configuration.
func NewBuilder(cfg Config) *Builder {
	if cfg.SmoothingWindow <= 0 {
		cfg.SmoothingWindow = DefaultConfig().SmoothingWindow
	}
	return &Builder{cfg: cfg, now: time.Now}
}

// Observe records a letter prediction for the current frame. Empty
// string means no hand was detected. It returns the letter committed by
// this observation, or "".
func (b *Builder) Observe(letter string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if letter == "" {
		b.window = b.window[:0]
		// A long enough gap ends the word
		if !b.lastSeen.IsZero() && now.Sub(b.lastSeen) >= b.cfg.WordGapTime {
			b.commitWordLocked()
		}
		return ""
	}

	b.lastSeen = now

	b.window = append(b.window, letter)
	if len(b.window) > b.cfg.SmoothingWindow {
		b.window = b.window[1:]
	}

	smoothed := majority(b.window)
	if smoothed != b.current {
		b.current = smoothed
		b.currentFrom = now
		b.committed = false
		return ""
	}

	if !b.committed && now.Sub(b.currentFrom) >= b.cfg.LetterHoldTime {
		b.word.WriteString(smoothed)
		b.committed = true
		return smoothed
	}

	return ""
}

// CurrentWord returns the word being built, including committed letters
// only.
func (b *Builder) CurrentWord() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.word.String()
}

// Sentence returns the committed words joined with spaces.
func (b *Builder) Sentence() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.sentence, " ")
}

// Flush commits any in-progress word and returns the full sentence.
func (b *Builder) Flush() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commitWordLocked()
	return strings.Join(b.sentence, " ")
}

// Reset clears all builder state.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.window = b.window[:0]
	b.current = ""
	b.committed = false
	b.word.Reset()
	b.sentence = nil
	b.lastSeen = time.Time{}
}

func (b *Builder) commitWordLocked() {
	if b.word.Len() > 0 {
		b.sentence = append(b.sentence, b.word.String())
		b.word.Reset()
	}
	b.current = ""
	b.committed = false
	b.lastSeen = time.Time{}
}

// majority returns the most frequent letter in the window, preferring
// the most recent on ties.
func majority(window []string) string {
	counts := make(map[string]int, len(window))
	for _, l := range window {
		counts[l]++
	}

	best := ""
	for i := len(window) - 1; i >= 0; i-- {
		l := window[i]
		if best == "" || counts[l] > counts[best] {
			best = l
		}
	}
	return best
}
