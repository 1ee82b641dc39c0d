package session

import (
	"fmt"
	"time"

	"battleship/internal/game"
	"battleship/internal/player"
)

type State int32

const (
	StateWaiting State = iota
	StatePlacing
	StatePlay
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StatePlacing:
		return "placing"
	case StatePlay:
		return "play"
	case StateTerminal:
		return "terminal"
	default:
		return "waiting_for_placement"
	}
}

// Reason explains how a session ended.
type Reason int

const (
	ReasonFleetDestroyed Reason = iota
	ReasonQuit
	ReasonDisconnect
	ReasonTimeout
	ReasonAborted
	ReasonShutdown
)

func (r Reason) String() string {
	switch r {
	case ReasonFleetDestroyed:
		return "fleet destroyed"
	case ReasonQuit:
		return "quit"
	case ReasonDisconnect:
		return "disconnect"
	case ReasonTimeout:
		return "timeout"
	case ReasonAborted:
		return "aborted"
	default:
		return "shutdown"
	}
}

// Forfeit reports whether the session ended without a fleet being sunk
// but still produced a winner.
func (r Reason) Forfeit() bool {
	return r == ReasonQuit || r == ReasonDisconnect || r == ReasonTimeout
}

type Config struct {
	Roster           game.Roster
	PlacementTimeout time.Duration // zero disables
	TurnTimeout      time.Duration // zero disables
}

// Result is handed back to the lobby once the session is terminal.
type Result struct {
	Players [game.MAX_PLAYERS]*player.Player
	Winner  int // -1 when nobody won
	Reason  Reason
	// Dropped marks players whose connection must not be reused.
	Dropped [game.MAX_PLAYERS]bool
}

// playerError ties a failed read or write to the player that caused it.
type playerError struct {
	index  int
	reason Reason
	err    error
}

func (e *playerError) Error() string {
	return fmt.Sprintf("player %d: %s: %v", e.index+1, e.reason, e.err)
}

func (e *playerError) Unwrap() error {
	return e.err
}
