// Package realtime fans out back-office events (audit entries, error logs)
// to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/gorilla/websocket"
)

// Topics.
const (
	TopicAudit  = "audit_log"
	TopicErrors = "error_logs"
)

const (
	EventInsert = "INSERT"

	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Event is the JSON frame pushed to subscribers.
type Event struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type subscriber struct {
	topic string
	send  chan []byte
}

type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   logging.Logger
	closed   bool
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) subscribe(topic string) *subscriber {
	s := &subscriber{topic: topic, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.send)
		return s
	}
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*subscriber]struct{})
	}
	h.subs[topic][s] = struct{}{}
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.topic][s]; ok {
		delete(h.subs[s.topic], s)
		close(s.send)
	}
}

// Subscribers returns the number of live subscribers on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Publish delivers an INSERT event to every subscriber of topic. Slow
// subscribers whose buffer is full miss the event.
func (h *Hub) Publish(ctx context.Context, topic string, payload any) {
	data, err := json.Marshal(Event{Topic: topic, Event: EventInsert, Payload: payload})
	if err != nil {
		h.logger.Error(ctx, "realtime marshal failed", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[topic] {
		select {
		case s.send <- data:
		default:
			h.logger.Warn(ctx, "realtime subscriber too slow, dropping event", "topic", topic)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for topic, set := range h.subs {
		for s := range set {
			close(s.send)
		}
		delete(h.subs, topic)
	}
}

// Handler upgrades the request and streams topic events until the peer
// disconnects or the hub closes.
func (h *Hub) Handler(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		s := h.subscribe(topic)
		defer h.unsubscribe(s)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case msg, ok := <-s.send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
