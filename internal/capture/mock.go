package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockCamera is an in-memory Camera for tests. Frames are served from a
// configurable generator so tests never touch real hardware.
type MockCamera struct {
	mu      sync.Mutex
	open    bool
	frames  int
	genFunc func() (*gocv.Mat, error)
	openErr error
}

// NewMockCamera creates a MockCamera serving frames from gen.
func NewMockCamera(gen func() (*gocv.Mat, error)) *MockCamera {
	return &MockCamera{genFunc: gen}
}

// SetOpenError makes Open fail with err.
func (m *MockCamera) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openErr = err
}

// Open marks the camera as open.
func (m *MockCamera) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	m.open = true
	return nil
}

// Close marks the camera as closed.
func (m *MockCamera) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// ReadFrame returns the next generated frame.
func (m *MockCamera) ReadFrame() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return nil, ErrCameraNotOpen
	}
	m.frames++
	return m.genFunc()
}

// FramesRead returns how many frames have been served.
func (m *MockCamera) FramesRead() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// IsOpen reports whether Open has been called without a matching Close.
func (m *MockCamera) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
