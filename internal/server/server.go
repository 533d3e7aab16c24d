// Package server exposes the sign language translator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/bhoomipatni/TheHandStand/internal/pipeline"
	"github.com/bhoomipatni/TheHandStand/internal/store"
)

// FrameProcessor is the recognition pipeline surface the server needs.
type FrameProcessor interface {
	ProcessFrame(ctx context.Context, frame *gocv.Mat) *pipeline.Result
	StartDetection()
	StopDetection()
	Reset()
	Speak(ctx context.Context, text string) error
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Pipeline  FrameProcessor
	Store     *store.Store
}

// Server handles the translator's HTTP API.
type Server struct {
	config  Config
	mux     *http.ServeMux
	start   time.Time
	preview *PreviewHandler

	// decode turns a data URL into a frame; replaced in tests.
	decode func(dataURL string) (*gocv.Mat, error)
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config:  config,
		mux:     http.NewServeMux(),
		start:   time.Now(),
		preview: NewPreviewHandler(),
		decode:  DecodeDataURL,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/process_frame", s.handleProcessFrame)
	s.mux.HandleFunc("/start_detection", s.handleStartDetection)
	s.mux.HandleFunc("/stop_detection", s.handleStopDetection)
	s.mux.HandleFunc("/reset", s.handleReset)
	s.mux.HandleFunc("/speak", s.handleSpeak)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/preview", s.preview)

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/detections", s.handleDetections)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleProcessFrame handles POST requests to /process_frame.
func (s *Server) handleProcessFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}
	if req.Image == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "no image data",
		})
		return
	}

	frame, err := s.decode(req.Image)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if frame != nil {
		defer frame.Close()
	}

	result := s.config.Pipeline.ProcessFrame(r.Context(), frame)
	s.preview.Publish(result)
	writeJSON(w, http.StatusOK, result)
}

// handleStartDetection handles POST requests to /start_detection.
func (s *Server) handleStartDetection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.Pipeline.StartDetection()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Detection started - show your gesture!",
	})
}

// handleStopDetection handles POST requests to /stop_detection.
func (s *Server) handleStopDetection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.Pipeline.StopDetection()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Detection stopped",
	})
}

// handleReset handles POST requests to /reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.Pipeline.Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Demo reset - ready for new gestures!",
	})
}

// handleSpeak handles POST requests to /speak.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "no text provided",
		})
		return
	}

	if err := s.config.Pipeline.Speak(r.Context(), req.Text); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "speech synthesis failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Speaking: " + req.Text,
	})
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleDetections handles GET requests to /api/detections.
func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		detections, err := s.config.Store.Detections().List(100)
		if err != nil {
			http.Error(w, "Failed to load detections", http.StatusInternalServerError)
			return
		}

		type item struct {
			ID          string    `json:"id"`
			Gesture     string    `json:"gesture"`
			Confidence  float64   `json:"confidence"`
			Translation string    `json:"translation"`
			CreatedAt   time.Time `json:"created_at"`
		}
		items := make([]item, 0, len(detections))
		for _, d := range detections {
			items = append(items, item{
				ID:          d.ID,
				Gesture:     d.Gesture,
				Confidence:  d.Confidence,
				Translation: d.Translation,
				CreatedAt:   d.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"detections": items})

	case http.MethodDelete:
		if err := s.config.Store.Detections().Clear(); err != nil {
			http.Error(w, "Failed to clear detections", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
