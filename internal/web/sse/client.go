package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/gomoku-go/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one connected event-stream viewer
type Client struct {
	hub         *Hub
	viewerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a client for the hub; it still has to be registered
func NewClient(hub *Hub, viewerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		viewerID:    viewerID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams a game's events to the response until the request is
// cancelled or the hub closes. The initial frame carries the snapshot, if any.
func ServeSSE(w http.ResponseWriter, r *http.Request, manager *HubManager, gameID model.GameID, viewerID model.PlayerID, snapshot string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	hub, client := manager.Subscribe(gameID, viewerID)
	defer hub.Unregister(client)

	if snapshot == "" {
		snapshot = `{"status":"connected"}`
	}
	if _, err := w.Write(formatSSEMessage("connected", snapshot)); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
