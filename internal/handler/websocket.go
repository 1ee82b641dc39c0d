package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"battleship/internal/hub"
	"battleship/internal/player"
)

type WebSocketHandler struct {
	Hub *hub.Hub
}

func (h *WebSocketHandler) Middleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handle plays the line protocol over websocket text messages. fiber
// recycles the connection as soon as Handle returns, so it waits until the
// player is closed and its read pump has stopped.
func (h *WebSocketHandler) Handle(c *websocket.Conn) {
	p := player.New(player.NewMessageConn(c))
	if err := admit(h.Hub, p); err != nil {
		log.Printf("[handler] %s rejected: %v", p, err)
	}
	<-p.Closed()
	<-p.Done()
}
