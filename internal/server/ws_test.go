package server

import (
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bhoomipatni/TheHandStand/internal/pipeline"
)

// dialPreview connects a WebSocket client to the handler and counts the
// messages it receives.
func dialPreview(t *testing.T, url string, received *atomic.Int64) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			received.Add(1)
		}
	}()
	return conn
}

// publishUntil publishes results until the counter moves, proving the
// broadcast path from Publish to the client is intact.
func publishUntil(t *testing.T, h *PreviewHandler, received *atomic.Int64) {
	t.Helper()

	before := received.Load()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.Publish(&pipeline.Result{Success: true, LivePreview: true})
		if received.Load() > before {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("published message never reached the client")
}

func TestPreviewHandler_Publish(t *testing.T) {
	h := NewPreviewHandler()
	ts := httptest.NewServer(h)
	defer ts.Close()

	var received atomic.Int64
	dialPreview(t, ts.URL, &received)
	publishUntil(t, h, &received)
}

func TestPreviewHandler_ConcurrentPublish(t *testing.T) {
	h := NewPreviewHandler()
	ts := httptest.NewServer(h)
	defer ts.Close()

	var received atomic.Int64
	dialPreview(t, ts.URL, &received)
	publishUntil(t, h, &received)

	// Overlapping frame round-trips publish from many goroutines at once
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Publish(&pipeline.Result{Success: true, DetectionActive: true})
			}
		}()
	}
	wg.Wait()

	// The handler must still register clients and deliver afterwards
	var late atomic.Int64
	dialPreview(t, ts.URL, &late)
	publishUntil(t, h, &late)
}
