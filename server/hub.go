package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second

	// sendBuffer is how many states a client may lag behind before it is
	// dropped as too slow.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan any
}

// Hub keeps the connected websocket clients and pushes every state to them.
// Each client has its own queue and writer goroutine, so Broadcast never
// waits on the network.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues v for every client. Clients whose queue is full are
// dropped.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, c := range h.clients {
		select {
		case c.send <- v:
		default:
			log.Println("WebSocket client too slow, dropping")
			h.removeLocked(conn)
		}
	}
}

// Serve upgrades the request, registers the client, queues snapshot() as
// the first message and then blocks reading until the client goes away.
// snapshot is taken after registration so no later broadcast is missed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snapshot func() any) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	c := h.register(conn, snapshot)
	defer h.remove(conn)

	go h.writeLoop(c)

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// register adds conn and queues the initial state under the same lock
// Broadcast uses, so the client sees states in order.
func (h *Hub) register(conn *websocket.Conn, snapshot func() any) *client {
	c := &client{conn: conn, send: make(chan any, sendBuffer)}

	h.mu.Lock()
	h.clients[conn] = c
	c.send <- snapshot()
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("Client connected. Total clients: %d", total)
	return c
}

func (h *Hub) writeLoop(c *client) {
	for v := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(v); err != nil {
			log.Println("WebSocket write error:", err)
			h.remove(c.conn)
			// drain until remove closes the queue
			for range c.send {
			}
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
	log.Printf("Client disconnected. Total clients: %d", len(h.clients))
}
