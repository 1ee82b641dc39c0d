package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"battleship/internal/config"
	"battleship/internal/handler"
	"battleship/internal/hub"
	"battleship/internal/session"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Config: %v", err)
	}

	lobby := hub.NewHub(hub.Options{
		MaxSessions:   cfg.MaxSessions,
		ReturnToLobby: cfg.ReturnToLobby,
		QueueTimeout:  cfg.QueueTimeout,
		Session: session.Config{
			Roster:           cfg.Roster(),
			PlacementTimeout: cfg.PlacementTimeout,
			TurnTimeout:      cfg.TurnTimeout,
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := net.Listen("tcp", cfg.TCPAddr)
	if err != nil {
		log.Fatalf("Listen failed: %v", err)
	}

	var app *fiber.App
	if cfg.HTTPAddr != "" {
		app = handler.NewApp(lobby, handler.Options{
			AdmissionLimit:  cfg.AdmissionLimit,
			AdmissionWindow: cfg.AdmissionWindow,
		})
		go func() {
			log.Printf("HTTP API and websocket endpoint on %s", cfg.HTTPAddr)
			if err := app.Listen(cfg.HTTPAddr); err != nil {
				log.Printf("HTTP server failed: %v", err)
			}
		}()
	}

	// Graceful shutdown setup
	shutdown := make(chan struct{})
	go handleSignals(cancel, app, lobby, shutdown)

	go lobby.MaintainQueue(ctx, cfg.MaintainInterval)
	go lobby.Run(ctx)

	log.Printf("Server starting on %s (fleet %s, return to lobby %v)", ln.Addr(), cfg.Fleet, cfg.ReturnToLobby)
	tcp := &handler.TCPHandler{
		Hub:     lobby,
		Limiter: handler.NewRateLimiter(cfg.AdmissionLimit, cfg.AdmissionWindow),
	}
	if err := tcp.Serve(ctx, ln); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	<-shutdown
	log.Println("Server stopped gracefully")
}

func handleSignals(cancel context.CancelFunc, app *fiber.App, lobby *hub.Hub, shutdown chan struct{}) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	<-sig
	log.Println("\nReceived shutdown signal")

	// Stop accepting new players
	cancel()

	// End running games and close everyone still connected; websocket
	// handlers return once their players are closed.
	lobby.Stop()

	if app != nil {
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	close(shutdown)
}
