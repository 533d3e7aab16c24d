package client

import (
	"github.com/bhoomipatni/TheHandStand/internal/capture"
)

// FrameSource supplies encoded frames for the capture loop. Production
// uses CameraSource; tests substitute canned payloads.
type FrameSource interface {
	// NextFrame returns the next frame as a JPEG data URL.
	NextFrame() (string, error)
	Close() error
}

// CameraSource reads frames from a camera and encodes them.
type CameraSource struct {
	camera capture.Camera
}

// NewCameraSource opens the camera and returns a source over it.
func NewCameraSource(camera capture.Camera) (*CameraSource, error) {
	if err := camera.Open(); err != nil {
		return nil, err
	}
	return &CameraSource{camera: camera}, nil
}

// NextFrame captures and encodes one frame.
func (s *CameraSource) NextFrame() (string, error) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		return "", err
	}
	defer frame.Close()

	return EncodeFrame(frame)
}

// Close releases the camera.
func (s *CameraSource) Close() error {
	return s.camera.Close()
}
