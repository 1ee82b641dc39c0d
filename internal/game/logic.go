package game

import "fmt"

// Fire resolves the current player's shot at the opponent's board. The turn
// passes to the opponent after every shot that does not end the match,
// including shots at squares that were already targeted.
func (m *Match) Fire(text string) (Shot, error) {
	if !m.active {
		return Shot{}, ErrMatchNotActive
	}

	shooter, target := m.current, m.Opponent()
	board := m.boards[target]

	coord, err := ParseCoordinate(text, board.Size())
	if err != nil {
		return Shot{}, err
	}

	kind, err := board.ReceiveShot(coord)
	if err != nil {
		return Shot{}, fmt.Errorf("fire at %s: %w", coord, err)
	}

	shot := Shot{
		Shooter: shooter,
		Target:  coord,
		Kind:    kind,
		Winner:  -1,
	}

	if kind == ShotHit {
		if ship, ok := board.shipAt(coord); ok && board.IsShipSunk(ship) {
			shot.SunkShip = ship.Name
		}
	}

	if board.AllShipsSunk() {
		m.active = false
		m.winner = shooter
		shot.GameOver = true
		shot.Winner = shooter
		return shot, nil
	}

	m.current = target
	return shot, nil
}
