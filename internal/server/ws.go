package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bhoomipatni/TheHandStand/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PreviewHandler pushes live classification results to WebSocket clients
// so the UI can render previews without polling. Publish can be called
// from any number of handler goroutines; all connection writes happen on
// a single broadcaster goroutine because gorilla connections allow only
// one concurrent writer.
type PreviewHandler struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	send    chan []byte
}

// NewPreviewHandler creates a PreviewHandler and starts its broadcaster.
func NewPreviewHandler() *PreviewHandler {
	h := &PreviewHandler{
		clients: make(map[*websocket.Conn]bool),
		send:    make(chan []byte, 16),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish queues a classification result for broadcast. When the
// broadcaster is backed up the result is dropped; previews are advisory
// and a frame response must never stall on them.
func (h *PreviewHandler) Publish(result *pipeline.Result) {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	msg, err := json.Marshal(map[string]any{
		"result":    result,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	select {
	case h.send <- msg:
	default:
	}
}

// broadcast delivers queued messages to every client, dropping
// connections whose writes fail.
func (h *PreviewHandler) broadcast() {
	for msg := range h.send {
		for _, conn := range h.deliver(msg) {
			h.drop(conn)
		}
	}
}

// deliver writes msg to all clients and returns the connections whose
// writes failed.
func (h *PreviewHandler) deliver(msg []byte) []*websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var dead []*websocket.Conn
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			dead = append(dead, conn)
		}
	}
	return dead
}

func (h *PreviewHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}
