package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/gayaku/internal/session"
)

const (
	writeWait      = 2 * time.Second
	clientQueueLen = 4
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSource produces tick results.
type FrameSource interface {
	Subscribe(fn func(session.Frame)) func()
	Latest() session.Frame
}

// clientMessage is what a browser may send: its surface size.
type clientMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type frameClient struct {
	conn *websocket.Conn
	send chan []byte
}

// FramesHandler broadcasts every tick's Frame to websocket clients. Slow
// clients drop frames rather than stall the tick.
type FramesHandler struct {
	source      FrameSource
	resize      func(width, height int)
	clients     map[*frameClient]bool
	mu          sync.RWMutex
	unsubscribe func()
}

// NewFramesHandler subscribes to source. resize, if set, receives the size
// clients report.
func NewFramesHandler(source FrameSource, resize func(width, height int)) *FramesHandler {
	h := &FramesHandler{
		source:  source,
		resize:  resize,
		clients: make(map[*frameClient]bool),
	}
	h.unsubscribe = source.Subscribe(h.broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &frameClient{conn: conn, send: make(chan []byte, clientQueueLen)}
	if msg, err := json.Marshal(h.source.Latest()); err == nil {
		c.send <- msg
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writeLoop()
	defer h.remove(c)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "resize" && h.resize != nil {
			h.resize(msg.Width, msg.Height)
		}
	}
}

func (h *FramesHandler) remove(c *frameClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (h *FramesHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast sends the frame to all connected clients.
func (h *FramesHandler) broadcast(frame session.Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Failed to encode frame: %v", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Close unsubscribes and disconnects all clients.
func (h *FramesHandler) Close() {
	h.unsubscribe()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (c *frameClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
