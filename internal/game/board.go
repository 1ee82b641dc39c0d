package game

import (
	"fmt"
	"strings"
)

// PlacedShip is one ship committed to a board.
type PlacedShip struct {
	Name  string
	Cells []Coordinate
}

// Board holds one player's ships and the shots fired at them. It knows
// nothing about sessions or turns.
type Board struct {
	size  int
	grid  [][]Cell
	ships []PlacedShip
}

func NewBoard(size int) *Board {
	return &Board{
		size: size,
		grid: createGrid(size),
	}
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) Ships() []PlacedShip {
	return b.ships
}

func (b *Board) cellAt(c Coordinate) Cell {
	return b.grid[c.Row][c.Col]
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

// CanPlaceShip reports whether every cell of the ship would be on the board
// and currently empty.
func (b *Board) CanPlaceShip(row, col, length int, o Orientation) bool {
	if length <= 0 {
		return false
	}
	dr, dc := o.step()
	for i := 0; i < length; i++ {
		r, c := row+dr*i, col+dc*i
		if !b.inBounds(r, c) || b.grid[r][c] != Empty {
			return false
		}
	}
	return true
}

// PlaceShip marks the ship's cells and returns them. The caller records the
// ship with addShip.
func (b *Board) PlaceShip(row, col, length int, o Orientation) ([]Coordinate, error) {
	if !b.CanPlaceShip(row, col, length, o) {
		return nil, fmt.Errorf("%w: %s %s length %d", ErrPlacementRejected, Coordinate{row, col}, o, length)
	}

	dr, dc := o.step()
	cells := make([]Coordinate, 0, length)
	for i := 0; i < length; i++ {
		r, c := row+dr*i, col+dc*i
		b.grid[r][c] = Ship
		cells = append(cells, Coordinate{Row: r, Col: c})
	}
	return cells, nil
}

func (b *Board) addShip(name string, cells []Coordinate) {
	b.ships = append(b.ships, PlacedShip{Name: name, Cells: cells})
}

// ReceiveShot resolves an incoming shot. Cells that were already shot are
// reported as ShotAlreadyTargeted and left untouched.
func (b *Board) ReceiveShot(c Coordinate) (ShotKind, error) {
	if !b.inBounds(c.Row, c.Col) {
		return ShotMiss, fmt.Errorf("%w: %d,%d outside board", ErrInvalidCoordinate, c.Row, c.Col)
	}

	switch b.grid[c.Row][c.Col] {
	case Ship:
		b.grid[c.Row][c.Col] = Hit
		return ShotHit, nil
	case Empty:
		b.grid[c.Row][c.Col] = Miss
		return ShotMiss, nil
	default:
		return ShotAlreadyTargeted, nil
	}
}

func (b *Board) IsShipSunk(ship PlacedShip) bool {
	for _, c := range ship.Cells {
		if b.grid[c.Row][c.Col] != Hit {
			return false
		}
	}
	return true
}

func (b *Board) AllShipsSunk() bool {
	for _, ship := range b.ships {
		if !b.IsShipSunk(ship) {
			return false
		}
	}
	return true
}

// shipAt returns the placed ship covering c, if any.
func (b *Board) shipAt(c Coordinate) (PlacedShip, bool) {
	for _, ship := range b.ships {
		for _, cell := range ship.Cells {
			if cell == c {
				return ship, true
			}
		}
	}
	return PlacedShip{}, false
}

// HiddenView renders the owner's view of the board, ships included.
func (b *Board) HiddenView() []string {
	return b.render(func(cell Cell) string {
		switch cell {
		case Ship:
			return SymbolShip
		case Hit:
			return SymbolHit
		case Miss:
			return SymbolMiss
		default:
			return SymbolEmpty
		}
	})
}

// PublicView renders what the opponent has learned. Unshot ship cells are
// indistinguishable from water.
func (b *Board) PublicView() []string {
	return b.render(func(cell Cell) string {
		switch cell {
		case Hit:
			return SymbolHit
		case Miss:
			return SymbolMiss
		default:
			return SymbolUnknown
		}
	})
}

func (b *Board) render(symbol func(Cell) string) []string {
	lines := make([]string, 0, b.size+1)

	header := make([]string, b.size)
	for col := range header {
		header[col] = fmt.Sprintf("%2d", col+1)
	}
	lines = append(lines, "  "+strings.Join(header, " "))

	for row := 0; row < b.size; row++ {
		cells := make([]string, b.size)
		for col := range cells {
			cells[col] = fmt.Sprintf("%2s", symbol(b.grid[row][col]))
		}
		lines = append(lines, string(rune('A'+row))+" "+strings.Join(cells, " "))
	}
	return lines
}
