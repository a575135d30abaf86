package attempt

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	httperrors "github.com/skillgauge/assessment-engine/pkg/http/errors"
	"github.com/skillgauge/assessment-engine/pkg/http/ws"
)

// WSHandler upgrades observer connections and subscribes them to one
// attempt's progress feed.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWSHandler creates the progress feed handler.
func NewWSHandler(hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origins once the proctor dashboard domain is fixed
				return true
			},
		},
		logger: logger,
	}
}

// HandleWebSocket handles GET /ws/attempts?attempt_id=...
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	attemptID, err := uuid.Parse(r.URL.Query().Get("attempt_id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidAttemptID, "attempt_id query parameter must be a UUID")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	wrapped := ws.NewConnection(conn)
	h.hub.Subscribe(attemptID, wrapped)
	go h.readLoop(attemptID, wrapped)
}

// readLoop services keepalives until the observer disconnects.
func (h *WSHandler) readLoop(attemptID uuid.UUID, conn *ws.Connection) {
	defer h.hub.Unsubscribe(attemptID, conn)
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msg.Type == ws.TypePing {
			if err := conn.Send(ws.Message{Type: ws.TypePong}); err != nil {
				return
			}
		}
	}
}
