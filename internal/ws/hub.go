package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	// sendBuffer is how many events may queue for a slow connection before
	// new ones are dropped.
	sendBuffer = 16
)

// client owns one connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue hands msg to the writer without blocking. It reports false when
// the connection is closed or its buffer is full.
func (c *client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) enqueueJSON(v any) bool {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: encode event: %v", err)
		return false
	}
	return c.enqueue(msg)
}

// writePump drains send until the client is closed or a write fails.
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("ws: write: %v", err)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// close stops the writer. send is never closed so late enqueues cannot panic.
func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub manages active WebSocket connections keyed by user ID and pushes
// events to them.
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[int64]map[*client]struct{}),
	}
}

func (h *Hub) register(userID int64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*client]struct{})
	}
	h.conns[userID][c] = struct{}{}
}

func (h *Hub) unregister(userID int64, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Connections reports how many open connections userID has.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Send queues event for every connection of userID and returns without
// waiting on the network. Delivery is best-effort: a connection whose
// buffer is full misses the event.
func (h *Hub) Send(userID int64, event any) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: encode event for user %d: %v", userID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		if !c.enqueue(msg) {
			log.Printf("ws: dropped event for user %d", userID)
		}
	}
}
