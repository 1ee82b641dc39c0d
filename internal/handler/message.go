package handler

import (
	"log"

	"battleship/internal/hub"
	"battleship/internal/player"
)

const (
	msgWelcome     = "Waiting for another player to join..."
	msgUnavailable = "The server is not accepting players right now. Try again later."

	msgTooManyConnections = "Too many connections from your address. Try again later."
)

// admit greets a new connection and puts it in the lobby queue.
func admit(h *hub.Hub, p *player.Player) error {
	log.Printf("[handler] %s connected", p)
	if err := p.Send(msgWelcome); err != nil {
		p.Close()
		return err
	}
	if err := h.Enqueue(p); err != nil {
		p.Send(msgUnavailable)
		p.Close()
		return err
	}
	return nil
}
