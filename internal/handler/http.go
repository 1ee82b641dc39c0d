package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"battleship/internal/hub"
)

type Options struct {
	AdmissionLimit  int           // websocket upgrades per remote IP and window, zero disables
	AdmissionWindow time.Duration // defaults to a minute
}

// NewApp builds the HTTP surface: health and lobby status endpoints plus the
// websocket entry point for players.
func NewApp(h *hub.Hub, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Upgraded websocket connections have their deadlines cleared, so
		// these only bound plain HTTP requests.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	})
	app.Use(logger.New())

	ws := &WebSocketHandler{Hub: h}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/api/lobby", func(c *fiber.Ctx) error {
		return c.JSON(h.Stats())
	})

	handlers := []fiber.Handler{ws.Middleware, websocket.New(ws.Handle)}
	if opts.AdmissionLimit > 0 {
		window := opts.AdmissionWindow
		if window <= 0 {
			window = time.Minute
		}
		admission := limiter.New(limiter.Config{
			Max:        opts.AdmissionLimit,
			Expiration: window,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).SendString(msgTooManyConnections)
			},
		})
		handlers = append([]fiber.Handler{admission}, handlers...)
	}
	app.Get("/ws", handlers...)

	return app
}
