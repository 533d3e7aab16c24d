package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testIndex() []IndexEntry {
	return []IndexEntry{
		{
			Gloss: "hello",
			Instances: []Instance{
				{URL: "https://example.com/v/1", VideoID: "1"},
				{URL: "https://example.com/v/2", VideoID: "2"},
			},
		},
		{
			Gloss: "please",
			Instances: []Instance{
				{URL: "https://example.com/v/3", VideoID: "3"},
				{VideoID: "4"}, // no URL
			},
		},
		{
			Gloss: "ignored",
			Instances: []Instance{
				{URL: "https://example.com/v/5", VideoID: "5"},
			},
		},
	}
}

func TestDownload_FiltersGlosses(t *testing.T) {
	out := t.TempDir()
	d := NewDownloader(out, []string{"HELLO", "please"})

	var urls []string
	d.fetch = func(_ context.Context, url, _ string) error {
		urls = append(urls, url)
		return nil
	}

	stats, err := d.Download(context.Background(), testIndex())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if stats.Downloaded != 3 {
		t.Errorf("Downloaded = %d, want 3", stats.Downloaded)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 for the missing URL", stats.Skipped)
	}
	for _, url := range urls {
		if url == "https://example.com/v/5" {
			t.Error("downloaded a gloss outside the selection")
		}
	}

	// Per-gloss directories are created, uppercase
	for _, gloss := range []string{"HELLO", "PLEASE"} {
		if _, err := os.Stat(filepath.Join(out, gloss)); err != nil {
			t.Errorf("missing gloss directory %s: %v", gloss, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "IGNORED")); !os.IsNotExist(err) {
		t.Error("created a directory for an unselected gloss")
	}
}

func TestDownload_EmptySelectionTakesAll(t *testing.T) {
	d := NewDownloader(t.TempDir(), nil)

	count := 0
	d.fetch = func(context.Context, string, string) error {
		count++
		return nil
	}

	stats, err := d.Download(context.Background(), testIndex())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if stats.Downloaded != 4 {
		t.Errorf("Downloaded = %d, want every instance with a URL", stats.Downloaded)
	}
	if count != 4 {
		t.Errorf("fetch called %d times, want 4", count)
	}
}

func TestDownload_FailuresAreCountedNotFatal(t *testing.T) {
	d := NewDownloader(t.TempDir(), []string{"hello"})

	calls := 0
	d.fetch = func(context.Context, string, string) error {
		calls++
		if calls == 1 {
			return errors.New("video unavailable")
		}
		return nil
	}

	stats, err := d.Download(context.Background(), testIndex())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if stats.Failed != 1 || stats.Downloaded != 1 {
		t.Errorf("stats = %+v, want one failure and one success", stats)
	}
}

func TestDownload_ContextCancelled(t *testing.T) {
	d := NewDownloader(t.TempDir(), nil)
	d.fetch = func(context.Context, string, string) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Download(ctx, testIndex()); !errors.Is(err, context.Canceled) {
		t.Errorf("Download() error = %v, want context.Canceled", err)
	}
}

func TestLoadIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	content := `[{"gloss":"hello","instances":[{"url":"https://example.com/v/1","video_id":"1"}]}]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	entries, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Gloss != "hello" {
		t.Errorf("entries = %+v, want one hello entry", entries)
	}
	if len(entries[0].Instances) != 1 || entries[0].Instances[0].VideoID != "1" {
		t.Errorf("instances = %+v, want one instance", entries[0].Instances)
	}
}

func TestLoadIndex_Missing(t *testing.T) {
	if _, err := LoadIndex(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing index file")
	}
}
