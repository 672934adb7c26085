package broadcast

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"workeye/backend/internal/server/middleware"
)

const (
	// pingInterval is how often the server pings idle connections.
	pingInterval = 30 * time.Second
	// pongWait is how long a connection may go silent before it is dropped.
	pongWait = 60 * time.Second
	// writeWait bounds each write so a dead peer cannot wedge the writer.
	writeWait = 10 * time.Second
)

// WSHandler serves the dashboard's live presence stream over a websocket.
// Authentication happens in middleware; by the time ServeWS runs, the request
// is already bound to a validated tenant.
type WSHandler struct {
	hub      *Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler returns a websocket handler backed by the given hub.
func NewWSHandler(hub *Hub, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard origins are validated by the admin service's session;
			// the token in middleware is the authority here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the connection, subscribes it to the tenant's events, and
// pumps events until the client goes away.
func (h *WSHandler) ServeWS(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "tenant context required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(tenantID)
	if sub == nil {
		_ = conn.Close()
		return
	}

	h.log.Info("presence subscriber connected", zap.String("tenant_id", tenantID))
	go h.writeLoop(conn, sub, tenantID)
	h.readLoop(conn, sub, tenantID)
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *Subscriber, tenantID string) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case ev, open := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(conn *websocket.Conn, sub *Subscriber, tenantID string) {
	defer func() {
		h.hub.Unsubscribe(sub)
		_ = conn.Close()
		h.log.Info("presence subscriber disconnected", zap.String("tenant_id", tenantID))
	}()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetReadLimit(512)
	for {
		// Clients do not send application messages; the read loop exists to
		// process pongs and notice closes.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
