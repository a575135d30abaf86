package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub fans attempt progress events out to observer connections (proctor
// dashboards). Observers subscribe per attempt; a dropped connection is
// pruned on the next publish that fails to write.
type Hub struct {
	mu        sync.RWMutex
	observers map[uuid.UUID][]*Connection // attempt_id -> observers
	logger    zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		observers: make(map[uuid.UUID][]*Connection),
		logger:    logger,
	}
}

// Subscribe registers an observer connection for an attempt.
func (h *Hub) Subscribe(attemptID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[attemptID] = append(h.observers[attemptID], conn)
	h.logger.Debug().Str("attempt_id", attemptID.String()).Msg("observer subscribed")
}

// Unsubscribe removes an observer connection and closes it.
func (h *Hub) Unsubscribe(attemptID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.observers[attemptID]
	for i, c := range conns {
		if c == conn {
			h.observers[attemptID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.observers[attemptID]) == 0 {
		delete(h.observers, attemptID)
	}
	conn.Close()
}

// Publish sends a message to every observer of an attempt. Connections
// that fail to write are dropped.
func (h *Hub) Publish(attemptID uuid.UUID, msg Message) {
	h.mu.RLock()
	conns := append([]*Connection(nil), h.observers[attemptID]...)
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			h.logger.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("dropping dead observer")
			h.Unsubscribe(attemptID, conn)
		}
	}
}

// Connection wraps a websocket connection with a write lock, since
// gorilla/websocket allows only one concurrent writer.
type Connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewConnection wraps an upgraded websocket connection.
func NewConnection(conn *websocket.Conn) *Connection {
	return &Connection{conn: conn}
}

// Send writes a message as JSON.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// ReadMessage reads the next message, used for keepalive handling.
func (c *Connection) ReadMessage() (Message, error) {
	var msg Message
	err := c.conn.ReadJSON(&msg)
	return msg, err
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}
