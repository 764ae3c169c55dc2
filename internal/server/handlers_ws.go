package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Clients connect from arbitrary viewer origins
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return nil
	}

	connectionID := uuid.New()
	s.hub.Register(connectionID, conn)

	sess := session.New(s.sessionDeps, connectionID)
	ctx := c.Request().Context()

	// Connect-time token shortcut, equivalent to sending an auth message
	// as the first frame.
	if token := c.QueryParam("token"); token != "" {
		raw, err := json.Marshal(domain.ClientMessage{Type: domain.MsgAuth, Token: token})
		if err == nil {
			sess.HandleMessage(ctx, raw)
		}
	}

	// Read pump (blocks until disconnect)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		sess.HandleMessage(ctx, data)
	}

	sess.Close()
	s.hub.Unregister(connectionID)

	return nil
}
