package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bhoomipatni/TheHandStand/internal/pipeline"
)

// DefaultInterval is the capture cadence.
const DefaultInterval = 2 * time.Second

// SessionConfig configures a capture session.
type SessionConfig struct {
	// BaseURL of the recognition backend.
	BaseURL string

	// Interval between captured frames. Defaults to DefaultInterval.
	Interval time.Duration

	// HTTPClient used for all requests. Defaults to a 10s-timeout
	// client.
	HTTPClient *http.Client

	// View configures the output targets.
	View ViewConfig
}

// Session owns the capture loop lifecycle: the timer, the in-flight
// dispatches, and the view state they fold into. All session state lives
// here rather than in package globals, so stop and restart are
// unambiguous.
type Session struct {
	source   FrameSource
	baseURL  string
	interval time.Duration
	client   *http.Client

	mu         sync.Mutex
	view       *View
	running    bool
	generation uint64 // bumped on every stop; stale responses are discarded
	nextSeq    uint64
	lastSeq    uint64 // highest sequence folded into the view
	stop       chan struct{}
	wg         sync.WaitGroup
}

// NewSession creates a Session reading frames from source.
func NewSession(source FrameSource, cfg SessionConfig) *Session {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Session{
		source:   source,
		baseURL:  cfg.BaseURL,
		interval: interval,
		client:   client,
		view:     NewView(cfg.View),
	}
}

// Start begins the capture loop: one immediate tick, then one every
// interval. Calling Start on a running session is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.loop(s.stop)
}

// Stop cancels the capture timer synchronously: once Stop returns, no
// further frames are dispatched and any still-in-flight responses are
// discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.generation++
	close(s.stop)
}

// Wait blocks until the capture loop goroutine has exited.
func (s *Session) Wait() {
	s.wg.Wait()
}

// loop fires the capture ticks until stopped.
func (s *Session) loop(stop chan struct{}) {
	defer s.wg.Done()

	// Immediate first tick
	s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick captures one frame and dispatches it. The round-trip runs in its
// own goroutine so a slow backend never delays the next tick.
func (s *Session) tick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	seq := s.nextSeq
	s.nextSeq++
	gen := s.generation
	s.mu.Unlock()

	payload, err := s.source.NextFrame()
	if err != nil {
		log.Printf("frame capture failed: %v", err)
		return
	}

	// Re-check under the lock so no dispatch can start once Stop has
	// returned
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || gen != s.generation {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		result, err := s.postFrame(payload)
		if err != nil {
			log.Printf("process_frame failed: %v", err)
			return
		}
		if !result.Success {
			log.Printf("process_frame unsuccessful: %s", result.Error)
			return
		}
		s.applyResult(gen, seq, result)
	}()
}

// applyResult folds a response into the view unless it is stale: from a
// stopped generation, or older than one already applied.
func (s *Session) applyResult(gen, seq uint64, result *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}
	if seq < s.lastSeq {
		return
	}
	s.lastSeq = seq
	s.view.Apply(result)
}

// postFrame posts one encoded frame to /process_frame.
func (s *Session) postFrame(payload string) (*pipeline.Result, error) {
	body, err := json.Marshal(map[string]string{"image": payload})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := s.client.Post(s.baseURL+"/process_frame", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result pipeline.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// StartDetection asks the backend to begin treating frames as
// intentional detections. It does not touch the capture timer.
func (s *Session) StartDetection(ctx context.Context) error {
	return s.signal(ctx, "/start_detection")
}

// StopDetection asks the backend to stop treating frames as detections.
// The capture timer keeps running for idle preview.
func (s *Session) StopDetection(ctx context.Context) error {
	return s.signal(ctx, "/stop_detection")
}

// signal posts a bodyless control request and records its status
// message.
func (s *Session) signal(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var parsed struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("%s rejected: %s", path, parsed.Error)
	}

	s.mu.Lock()
	s.view.Status = parsed.Message
	s.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the current view state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.view
}

// Close stops the session and releases the frame source.
func (s *Session) Close() error {
	s.Stop()
	s.wg.Wait()
	return s.source.Close()
}
