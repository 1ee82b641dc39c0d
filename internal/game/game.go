package game

import (
	"time"

	"github.com/google/uuid"
)

// Match is the rules engine for one pairing. During placement the two
// players may call PlaceShip and MarkPlayerReady concurrently because all
// writes are partitioned by player index. Everything else must be called
// from a single goroutine.
type Match struct {
	ID        uuid.UUID
	boards    [MAX_PLAYERS]*Board
	roster    Roster
	current   int
	active    bool
	ready     [MAX_PLAYERS]bool
	winner    int
	createdAt time.Time
}

func NewMatch(roster Roster) *Match {
	m := &Match{
		ID:        uuid.New(),
		roster:    roster,
		winner:    -1,
		createdAt: time.Now(),
	}
	for i := range m.boards {
		m.boards[i] = NewBoard(BOARD_SIZE)
	}
	return m
}

func (m *Match) Roster() Roster {
	return m.roster
}

func (m *Match) Board(player int) *Board {
	return m.boards[player]
}

func (m *Match) Age() time.Duration {
	return time.Since(m.createdAt)
}

// PlaceShip validates and commits one ship on the player's own board.
// ErrPlacementRejected means the player should pick another position.
func (m *Match) PlaceShip(player int, ship ShipSpec, row, col int, o Orientation) ([]Coordinate, error) {
	if !validPlayer(player) {
		return nil, ErrInvalidPlayer
	}
	board := m.boards[player]
	cells, err := board.PlaceShip(row, col, ship.Length, o)
	if err != nil {
		return nil, err
	}
	board.addShip(ship.Name, cells)
	return cells, nil
}

func (m *Match) MarkPlayerReady(player int) {
	if validPlayer(player) {
		m.ready[player] = true
	}
}

func (m *Match) Ready(player int) bool {
	return validPlayer(player) && m.ready[player]
}

// Start opens the turn phase. It must be called once both placement loops
// have joined.
func (m *Match) Start() error {
	for _, ready := range m.ready {
		if !ready {
			return ErrNotReady
		}
	}
	m.active = true
	m.current = 0
	return nil
}

func (m *Match) Active() bool {
	return m.active
}

func (m *Match) CurrentPlayer() int {
	return m.current
}

func (m *Match) Opponent() int {
	return 1 - m.current
}

// Winner returns the winning player once the match has ended.
func (m *Match) Winner() (int, bool) {
	return m.winner, m.winner >= 0
}

// Forfeit ends the match in favour of the loser's opponent.
func (m *Match) Forfeit(loser int) {
	if !validPlayer(loser) {
		return
	}
	m.active = false
	m.winner = 1 - loser
}

// VisibleBoardFor returns what player has discovered about the other side.
func (m *Match) VisibleBoardFor(player int) []string {
	return m.boards[1-player].PublicView()
}

func validPlayer(player int) bool {
	return player >= 0 && player < MAX_PLAYERS
}
