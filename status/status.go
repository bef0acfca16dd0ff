package status

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	WARNING
	RELOAD
)

type event struct {
	Message string
	Time    time.Time
	Type    int
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// Hub fans diagnostics events out to connected websocket clients. One
// hub per server, explicitly owned, no package-level state.
type Hub struct {
	mu          sync.Mutex
	clients     map[*client]bool
	lastMessage []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// Register takes ownership of the connection; a late joiner immediately
// receives the most recent event.
func (h *Hub) Register(conn *websocket.Conn) {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 32)}
	go c.writePump()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	if h.lastMessage != nil {
		c.send <- h.lastMessage
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) broadcast(e *event) {
	data, err := json.Marshal(e)
	if err != nil {
		panic(err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastMessage = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow client, drop the event instead of blocking assembly
		}
	}
}

func (h *Hub) emit(_type int, format string, a ...interface{}) {
	h.broadcast(&event{
		Message: fmt.Sprintf(format, a...),
		Time:    time.Now(),
		Type:    _type,
	})
}

func (h *Hub) Info(format string, a ...interface{}) {
	h.emit(INFO, format, a...)
}

func (h *Hub) Error(format string, a ...interface{}) {
	h.emit(ERROR, format, a...)
}

func (h *Hub) Warning(format string, a ...interface{}) {
	h.emit(WARNING, format, a...)
}

func (h *Hub) Reload(format string, a ...interface{}) {
	h.emit(RELOAD, format, a...)
}
