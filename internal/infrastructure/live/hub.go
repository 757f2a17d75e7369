package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // admin routes are already behind JWT auth
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans recorded events out to connected admin dashboards. Slow clients
// get dropped rather than backing up the whole feed.
type Hub struct {
	clients map[*client]struct{}
	mu      sync.RWMutex

	pingInterval time.Duration
	writeTimeout time.Duration

	logger *zap.SugaredLogger
}

type client struct {
	conn *websocket.Conn
	send chan *domain.Event
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:      make(map[*client]struct{}),
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// Publish delivers the event to every connected client. Non-blocking.
func (h *Hub) Publish(ev *domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			// Client is not keeping up; the writer loop will close it.
		}
	}
}

// HandleWebSocket upgrades the connection and streams events until the client
// goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan *domain.Event, 32),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Infow("live feed client connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	h.readLoop(c)
}

// ClientCount reports connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(c *client) {
	pingTicker := time.NewTicker(h.pingInterval)
	defer pingTicker.Stop()
	defer h.drop(c)

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-pingTicker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; it exists to notice disconnects and
// answer control frames.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
