package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	log *logger.Logger
	hub *ws.Hub
}

func NewWSHandler(log *logger.Logger, hub *ws.Hub) *WSHandler {
	return &WSHandler{log: log.With("handler", "WSHandler"), hub: hub}
}

// Stream upgrades the connection, registers the subscriber, and serves its
// read loop until it disconnects or errors. Viewers need no auth; missed
// events are not replayed, so clients catch up via GET /api/trees.
func (wh *WSHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wh.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	client := wh.hub.NewClient(conn)
	wh.hub.Register(client)
	wh.log.Debug("Websocket client connected", "clientID", client.ID)

	defer func() {
		wh.hub.Unregister(client)
		_ = conn.Close()
		wh.log.Debug("Websocket client disconnected", "clientID", client.ID)
	}()

	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		wh.hub.HandleInbound(client, msg)
	}
}
