package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/edvart/fighter-roulette/internal/coordinator"
	log "github.com/sirupsen/logrus"
)

// sseMessage is one rendered server-sent event.
type sseMessage struct {
	Name string
	Data []byte
}

// SSEClient represents a connected SSE client.
type SSEClient struct {
	ID      string
	Channel chan sseMessage
}

// EventHub manages SSE connections and broadcasts coordinator events as JSON.
type EventHub struct {
	clients map[*SSEClient]bool
	mu      sync.RWMutex
}

// NewEventHub creates a new event hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*SSEClient]bool)}
}

// Run processes events from the coordinator until the channel closes.
func (h *EventHub) Run(events <-chan coordinator.Event) {
	log.Println("SSE hub started")
	for event := range events {
		h.broadcast(event)
	}
}

// eventName maps an event to its SSE event name; "" means it is not streamed.
func eventName(event coordinator.Event) string {
	switch event.(type) {
	case coordinator.BattleGenerated:
		return "battle"
	case coordinator.GenerationFailed:
		return "generation-failed"
	case coordinator.WinnerAssigned:
		return "winner"
	case coordinator.WinnerCleared:
		return "winner-cleared"
	case coordinator.SettingsCommitted:
		return "settings"
	case coordinator.SettingsRejected:
		return "settings-rejected"
	case coordinator.CooldownUpdated:
		return "cooldown"
	default:
		return ""
	}
}

func (h *EventHub) broadcast(event coordinator.Event) {
	name := eventName(event)
	if name == "" {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Warnf("Failed to encode %s event: %v", name, err)
		return
	}
	msg := sseMessage{Name: name, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Channel <- msg:
		default:
			// Client too slow, skip
			log.Printf("Dropping message for slow client %s", client.ID)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection handles a new SSE connection.
func (h *EventHub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &SSEClient{
		ID:      fmt.Sprintf("%p", r),
		Channel: make(chan sseMessage, 10),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	log.Debugf("SSE client connected: %s", client.ID)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		log.Debugf("SSE client disconnected: %s", client.ID)
	}()

	// Send initial keepalive
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-client.Channel:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Name, msg.Data)
			flusher.Flush()
		}
	}
}
