package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/infrastructure/ws"
)

// RequireUpgrade rechaza con 426 lo que no sea un upgrade a websocket.
func RequireUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
}

// StockUpdatesSocket registra la conexión en el hub y la mantiene hasta que el cliente cierre.
func StockUpdatesSocket(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		if !hub.Register(c) {
			_ = c.Close()
			return
		}
		defer hub.Unregister(c)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
