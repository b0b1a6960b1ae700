package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Somtiee/swaparc/internal/domain/model"
)

// WebSocketBroadcaster pushes post-flush wallet aggregate updates to every
// connected client.
type WebSocketBroadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

func NewWebSocketBroadcaster() *WebSocketBroadcaster {
	return &WebSocketBroadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (b *WebSocketBroadcaster) BroadcastAggregate(update *model.AggregateUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg, err := json.Marshal(update)
	if err != nil {
		log.Printf("failed to marshal aggregate update: %v", err)
		return
	}
	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("websocket write error: %v", err)
			c.Close()
			delete(b.clients, c)
		}
	}
}

// Handler returns an http.HandlerFunc to accept websocket connections.
func (b *WebSocketBroadcaster) Handler() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		b.mu.Lock()
		b.clients[conn] = struct{}{}
		b.mu.Unlock()
		// read loop to detect closed connections
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}
