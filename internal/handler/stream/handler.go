// Package stream pushes transcript changes to clients over Server-Sent Events
// and websockets. Both transports start with a snapshot and then relay the
// controller's turn and status events in order.
package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	turnservice "github.com/tawfi332/Fsociety-T/backend/internal/service/turn"
	"github.com/tawfi332/Fsociety-T/backend/pkg/utils"
)

// EventResync tells a client it missed events and must reload the transcript.
const EventResync = "resync"

const (
	subscriberBuffer  = 32
	heartbeatInterval = 15 * time.Second
)

// Handler manages push connections for one controller.
type Handler struct {
	controller *turnservice.Controller
	heartbeat  time.Duration
	buffer     int
	upgrader   websocket.Upgrader
}

// New creates a stream handler.
func New(controller *turnservice.Controller) *Handler {
	return &Handler{
		controller: controller,
		heartbeat:  heartbeatInterval,
		buffer:     subscriberBuffer,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the SSE and websocket endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleSSE)
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	snapshot, events, cancel := h.controller.Subscribe(h.buffer)
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	if err := utils.SendSSEEvent(w, flusher, "snapshot", snapshot); err != nil {
		log.Printf("[sse] %v", err)
		return
	}
	log.Printf("[sse] stream opened, turns=%d, pending=%v", len(snapshot.Turns), snapshot.Pending)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] stream closed")
			return
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				// The controller dropped this subscriber; the client reconnects for a fresh snapshot.
				_ = utils.SendSSEEvent(w, flusher, EventResync, map[string]string{"reason": "overflow"})
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(ev.Kind), ev); err != nil {
				log.Printf("[sse] %v", err)
				return
			}
		}
	}
}
