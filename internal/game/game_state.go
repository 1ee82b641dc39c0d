package game

import (
	"errors"
	"fmt"
)

const (
	BOARD_SIZE  = 10
	MAX_PLAYERS = 2
)

var (
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrPlacementRejected  = errors.New("placement rejected")
	ErrMatchNotActive     = errors.New("match is not active")
	ErrNotReady           = errors.New("players have not finished placement")
	ErrInvalidPlayer      = errors.New("invalid player index")
)

// Cell is the content of one square on a player's own grid.
type Cell int

const (
	Empty Cell = iota
	Ship
	Hit
	Miss
)

// Symbols used when rendering grids.
const (
	SymbolEmpty   = "."
	SymbolShip    = "S"
	SymbolHit     = "X"
	SymbolMiss    = "O"
	SymbolUnknown = "."
)

type Coordinate struct {
	Row int
	Col int
}

// String renders the coordinate the way players type it, e.g. "B7".
func (c Coordinate) String() string {
	return fmt.Sprintf("%c%d", 'A'+rune(c.Row), c.Col+1)
}

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "V"
	}
	return "H"
}

// step returns the row/column delta between consecutive cells of a ship.
func (o Orientation) step() (int, int) {
	if o == Vertical {
		return 1, 0
	}
	return 0, 1
}

type ShotKind int

const (
	ShotMiss ShotKind = iota
	ShotHit
	ShotAlreadyTargeted
)

func (k ShotKind) String() string {
	switch k {
	case ShotHit:
		return "HIT"
	case ShotAlreadyTargeted:
		return "ALREADY_TARGETED"
	default:
		return "MISS"
	}
}

// Shot is the structured outcome of one resolved shot.
type Shot struct {
	Shooter  int
	Target   Coordinate
	Kind     ShotKind
	SunkShip string // empty unless this shot sank a ship
	GameOver bool
	Winner   int // valid only when GameOver
}

func createGrid(size int) [][]Cell {
	grid := make([][]Cell, size)
	for row := range grid {
		grid[row] = make([]Cell, size)
	}
	return grid
}
