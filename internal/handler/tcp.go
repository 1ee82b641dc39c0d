package handler

import (
	"context"
	"errors"
	"log"
	"net"

	"battleship/internal/hub"
	"battleship/internal/player"
)

type TCPHandler struct {
	Hub *hub.Hub
	// Limiter caps admissions per remote host; nil admits everyone.
	Limiter *RateLimiter
}

// Serve accepts line-protocol players until ctx ends. Each connection is
// handed straight to the lobby; the accept loop never blocks on a game.
func (h *TCPHandler) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("[handler] accept failed: %v", err)
			continue
		}
		go h.HandleConn(conn)
	}
}

func (h *TCPHandler) HandleConn(conn net.Conn) {
	if h.Limiter != nil && !h.Limiter.Allow(hostOf(conn.RemoteAddr())) {
		log.Printf("[handler] %s rejected: too many connections", conn.RemoteAddr())
		c := player.NewLineConn(conn)
		c.WriteLine(msgTooManyConnections)
		c.Close()
		return
	}

	p := player.New(player.NewLineConn(conn))
	if err := admit(h.Hub, p); err != nil {
		log.Printf("[handler] %s rejected: %v", p, err)
	}
}
