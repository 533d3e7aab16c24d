package words

import (
	"testing"
	"time"
)

// fakeClock advances manually so hold and gap timing is deterministic.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestBuilder(cfg Config) (*Builder, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBuilder(cfg)
	b.now = clock.now
	return b, clock
}

func TestBuilder_CommitsHeldLetter(t *testing.T) {
	b, clock := newTestBuilder(DefaultConfig())

	// Letter must be held for the hold time before committing
	for i := 0; i < 4; i++ {
		if got := b.Observe("a"); got != "" {
			t.Fatalf("committed %q before hold time elapsed", got)
		}
		clock.advance(200 * time.Millisecond)
	}

	clock.advance(300 * time.Millisecond)
	if got := b.Observe("a"); got != "a" {
		t.Fatalf("Observe() = %q, want committed %q", got, "a")
	}

	// Holding longer does not commit the letter again
	clock.advance(time.Second)
	if got := b.Observe("a"); got != "" {
		t.Fatalf("letter %q committed twice", got)
	}

	if b.CurrentWord() != "a" {
		t.Errorf("CurrentWord() = %q, want %q", b.CurrentWord(), "a")
	}
}

func TestBuilder_SmoothingOutvotesNoise(t *testing.T) {
	b, clock := newTestBuilder(DefaultConfig())

	// A single stray prediction inside a run of "b" must not reset the
	// hold timer once "b" holds the majority.
	sequence := []string{"b", "b", "b", "x", "b", "b", "b"}
	committed := ""
	for _, letter := range sequence {
		if got := b.Observe(letter); got != "" {
			committed = got
		}
		clock.advance(250 * time.Millisecond)
	}

	if committed != "b" {
		t.Errorf("committed %q, want %q", committed, "b")
	}
}

func TestBuilder_WordGapEndsWord(t *testing.T) {
	b, clock := newTestBuilder(DefaultConfig())

	commit := func(letter string) {
		t.Helper()
		b.Observe(letter)
		clock.advance(DefaultConfig().LetterHoldTime)
		if got := b.Observe(letter); got != letter {
			t.Fatalf("failed to commit %q, got %q", letter, got)
		}
		// Break the run so the next letter starts a fresh hold
		b.window = b.window[:0]
		b.current = ""
	}

	commit("h")
	commit("i")

	// Hand disappears; before the gap the word is still pending
	clock.advance(time.Second)
	b.Observe("")
	if got := b.Sentence(); got != "" {
		t.Fatalf("Sentence() = %q before word gap elapsed", got)
	}

	clock.advance(1500 * time.Millisecond)
	b.Observe("")

	if got := b.Sentence(); got != "hi" {
		t.Errorf("Sentence() = %q, want %q", got, "hi")
	}
	if got := b.CurrentWord(); got != "" {
		t.Errorf("CurrentWord() = %q after word commit, want empty", got)
	}
}

func TestBuilder_FlushCommitsPendingWord(t *testing.T) {
	b, clock := newTestBuilder(DefaultConfig())

	b.Observe("y")
	clock.advance(DefaultConfig().LetterHoldTime)
	b.Observe("y")

	if got := b.Flush(); got != "y" {
		t.Errorf("Flush() = %q, want %q", got, "y")
	}
	if got := b.CurrentWord(); got != "" {
		t.Errorf("CurrentWord() = %q after flush, want empty", got)
	}
}

func TestBuilder_Reset(t *testing.T) {
	b, clock := newTestBuilder(DefaultConfig())

	b.Observe("a")
	clock.advance(DefaultConfig().LetterHoldTime)
	b.Observe("a")
	b.Flush()

	b.Reset()

	if b.CurrentWord() != "" || b.Sentence() != "" {
		t.Errorf("state after Reset: word=%q sentence=%q, want empty", b.CurrentWord(), b.Sentence())
	}
}

func TestMajority(t *testing.T) {
	tests := []struct {
		name   string
		window []string
		want   string
	}{
		{"unanimous", []string{"a", "a", "a"}, "a"},
		{"majority wins", []string{"a", "b", "a"}, "a"},
		{"tie prefers recent", []string{"a", "a", "b", "b"}, "b"},
		{"single", []string{"c"}, "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := majority(tt.window); got != tt.want {
				t.Errorf("majority(%v) = %q, want %q", tt.window, got, tt.want)
			}
		})
	}
}
