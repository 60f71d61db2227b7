// Package stream broadcasts live tracker snapshots to websocket clients so
// a browser can draw player positions while a video is processed.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/swdee/go-playertrack"
	"github.com/swdee/go-playertrack/tracker"
)

const (
	// queueSize is the number of encoded frames buffered for the hub
	queueSize = 16
	// writeWait is the time allowed to write a message to a client
	writeWait = 5 * time.Second
	// pongWait is the time allowed between client pongs before the
	// connection is dropped
	pongWait = 60 * time.Second
)

// Hub keeps the connected websocket clients and broadcasts a message per
// frame to all of them.  It implements playertrack.Sink and http.Handler.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	quit       chan struct{}
	closeOnce  sync.Once
	mutex      sync.RWMutex
	dropped    int
	upgrader   websocket.Upgrader
}

// NewHub returns a Hub accepting connections from any origin.  Run must be
// called for messages to be delivered.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, queueSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run delivers messages until the context is cancelled or the Hub is
// closed, then disconnects every client
func (h *Hub) Run(ctx context.Context) {

	defer func() {
		h.Close()
		h.disconnectAll()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-h.quit:
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mutex.Unlock()
			playertrack.Logf("Stream client connected. Total: %d", n)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.send(message)
		}
	}
}

// send writes message to every client dropping those that fail
func (h *Hub) send(message []byte) {

	h.mutex.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.RUnlock()

	for _, c := range clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
			playertrack.Logf("Error sending stream message: %v", err)
			h.remove(c)
		}
	}
}

// remove closes and forgets a client
func (h *Hub) remove(client *websocket.Conn) {

	h.mutex.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mutex.Unlock()

	if ok {
		client.Close()
		playertrack.Logf("Stream client disconnected. Total: %d", n)
	}
}

// disconnectAll closes every client connection
func (h *Hub) disconnectAll() {

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		c.Close()
		delete(h.clients, c)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Dropped returns the number of frames discarded because the send queue
// was full
func (h *Hub) Dropped() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.dropped
}

// Consume implements playertrack.Sink.  Frames are queued without blocking
// the tracking pipeline, if the queue is full the frame is dropped.
func (h *Hub) Consume(ctx context.Context, frame playertrack.Frame,
	snap tracker.Snapshot) error {

	msg, err := Encode(snap)

	if err != nil {
		return err
	}

	select {
	case h.broadcast <- msg:
	default:
		h.mutex.Lock()
		h.dropped++
		h.mutex.Unlock()
	}

	return nil
}

// Close implements playertrack.Sink and stops Run
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.quit)
	})
	return nil
}

// ServeHTTP upgrades the request to a websocket and keeps the client
// registered until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	conn, err := h.upgrader.Upgrade(w, r, nil)

	if err != nil {
		playertrack.Logf("WebSocket upgrade error: %v", err)
		return
	}

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	select {
	case h.register <- conn:
	case <-h.quit:
		conn.Close()
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.quit:
	}
}
