package session

import (
	"fmt"

	"battleship/internal/game"
)

const (
	msgGameStarting      = "Game starting! You are now playing."
	msgPlaceFleet        = "Place your fleet. For each ship enter a start coordinate (e.g. A1), then an orientation: H (rightwards) or V (downwards)."
	msgInvalidCoordinate = "Invalid coordinate. Use a row letter A-J followed by a column number 1-10, e.g. B7."
	msgInvalidOrient     = "Invalid orientation. Enter H or V."
	msgPlacementRejected = "That ship does not fit there: it is off the grid or overlaps another ship. Try again."
	msgFleetReady        = "All ships placed. Waiting for your opponent to finish..."
	msgBattleBegins      = "All fleets are in position. Battle begins!"
	msgYourTurn          = "Your turn. Enter a target coordinate (e.g. B5) or 'quit' to forfeit."
	msgOpponentTurn      = "Waiting for your opponent to fire..."
	msgGameOver          = "Game over."
	msgShutdown          = "The server is shutting down."
	quitCommand          = "quit"
)

func placePrompt(ship game.ShipSpec) string {
	return fmt.Sprintf("Place your %s (length %d). Start coordinate:", ship.Name, ship.Length)
}

func orientationPrompt(ship game.ShipSpec) string {
	return fmt.Sprintf("Orientation for your %s (H or V):", ship.Name)
}

// shooterMessage is what the player who fired sees.
func shooterMessage(shot game.Shot) string {
	switch shot.Kind {
	case game.ShotAlreadyTargeted:
		return fmt.Sprintf("%s was already targeted. Your shot is wasted.", shot.Target)
	case game.ShotMiss:
		return fmt.Sprintf("%s: MISS.", shot.Target)
	}

	msg := fmt.Sprintf("%s: HIT!", shot.Target)
	if shot.SunkShip != "" {
		msg += fmt.Sprintf(" You sank their %s!", shot.SunkShip)
	}
	if shot.GameOver {
		msg += " All enemy ships are sunk. You win!"
	}
	return msg
}

// targetMessage is what the player who was fired at sees.
func targetMessage(shot game.Shot) string {
	switch shot.Kind {
	case game.ShotAlreadyTargeted:
		return fmt.Sprintf("Your opponent fired at %s again. Nothing changes.", shot.Target)
	case game.ShotMiss:
		return fmt.Sprintf("Your opponent fired at %s: MISS.", shot.Target)
	}

	msg := fmt.Sprintf("Your opponent fired at %s: HIT.", shot.Target)
	if shot.SunkShip != "" {
		msg += fmt.Sprintf(" Your %s was sunk.", shot.SunkShip)
	}
	if shot.GameOver {
		msg += " Your whole fleet is sunk. You lose."
	}
	return msg
}

// forfeitMessages returns the winner's and loser's notices.
func forfeitMessages(reason Reason) (string, string) {
	switch reason {
	case ReasonQuit:
		return "Your opponent quit. You win!", "You forfeited. Your opponent wins."
	case ReasonTimeout:
		return "Your opponent ran out of time. You win!", "You ran out of time. You lose."
	default:
		return "Your opponent disconnected. You win!", ""
	}
}

// abortMessage explains to a remaining player why placement was cut short.
func abortMessage(reason Reason, culprit bool) string {
	switch {
	case reason == ReasonShutdown:
		return msgShutdown
	case culprit && reason == ReasonTimeout:
		return "You took too long to place your fleet. Session aborted."
	case reason == ReasonTimeout:
		return "Your opponent took too long to place their fleet. Session aborted."
	default:
		return "Your opponent left during placement. Session aborted."
	}
}
