package stream

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	turnhandler "github.com/tawfi332/Fsociety-T/backend/internal/handler/turn"
	turnservice "github.com/tawfi332/Fsociety-T/backend/internal/service/turn"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// SubmitAck answers a submit message.
type SubmitAck struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// handleWebSocket 处理WebSocket连接。读循环负责提交，写循环独占连接写入。
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	snapshot, events, cancel := h.controller.Subscribe(h.buffer)
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	replies := make(chan outgoingMessage, 8)
	go h.writeLoop(ctx, conn, snapshot, events, replies)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	log.Printf("[websocket] new connection, turns=%d", len(snapshot.Turns))

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		reply := h.handleMessage(ctx, msg)
		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg inboundMessage) outgoingMessage {
	switch msg.Type {
	case "submit":
		err := h.controller.Submit(ctx, msg.Text)
		ack := SubmitAck{Accepted: err == nil}
		if err != nil {
			ack.Reason = turnhandler.RejectReason(err)
		}
		return newMessage("ack", ack)
	default:
		return newMessage("error", map[string]string{"message": "unsupported message type: " + msg.Type})
	}
}

// writeLoop is the connection's only writer.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, snapshot turnservice.Snapshot, events <-chan turnservice.Event, replies <-chan outgoingMessage) {
	// A failed write closes the connection so the read loop ends too.
	defer conn.Close()

	if err := writeMessage(conn, newMessage("snapshot", snapshot)); err != nil {
		log.Printf("[websocket] write snapshot failed: %v", err)
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case reply := <-replies:
			if err := writeMessage(conn, reply); err != nil {
				log.Printf("[websocket] write %s failed: %v", reply.Type, err)
				return
			}
		case ev, ok := <-events:
			if !ok {
				_ = writeMessage(conn, newMessage(EventResync, map[string]string{"reason": "overflow"}))
				return
			}
			if err := writeMessage(conn, newMessage(string(ev.Kind), ev)); err != nil {
				log.Printf("[websocket] write %s failed: %v", ev.Kind, err)
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg outgoingMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

func newMessage(kind string, data any) outgoingMessage {
	return outgoingMessage{
		Type:      kind,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}
