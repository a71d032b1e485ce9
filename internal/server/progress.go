package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

// progressEvent is sent to subscribers at the end of every epoch.
type progressEvent struct {
	Epoch int     `json:"epoch"`
	Loss  float64 `json:"loss"`
}

type client struct {
	send chan progressEvent
}

// hub fans progress events out to the websocket clients of one model.
// A client that does not keep up loses events instead of slowing training.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) subscribe() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{send: make(chan progressEvent, sendBuffer)}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) broadcast(ev progressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
		}
	}
}

func (h *hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects every client and refuses new ones.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// progressHandler streams the epoch events of a model over a websocket
// until the client goes away or the model is deleted.
func progressHandler(reg *registry, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := reg.get(c.Param("id"))
		if !ok {
			abort(c, errModelNotFound)
			return
		}
		// Subscribe before the handshake completes so no event of a run
		// started right after the dial is missed.
		cl, ok := m.hub.subscribe()
		if !ok {
			abort(c, errModelNotFound)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			m.hub.unsubscribe(cl)
			log.Warn("websocket upgrade failed", "model", m.id, "error", err)
			return
		}
		defer conn.Close()

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					m.hub.unsubscribe(cl)
					return
				}
			}
		}()

		for ev := range cl.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				m.hub.unsubscribe(cl)
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
	}
}
