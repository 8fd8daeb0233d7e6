package handlers

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/jortiz/teammatch/internal/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *websocket.Hub
	log *logrus.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, log *logrus.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// Handle upgrades the connection and starts its pumps. The connection is
// useless until the client sends an authenticate event; the hub registers
// it only after the token verifies.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	go client.WritePump()
	go client.ReadPump()
}
