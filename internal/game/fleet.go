package game

import (
	"fmt"
	"strconv"
	"strings"
)

type ShipSpec struct {
	Name   string
	Length int
}

// Roster is the ordered list of ships each player must place.
type Roster []ShipSpec

const (
	RosterStandard = "standard"
	RosterTest     = "test"
)

func StandardRoster() Roster {
	return Roster{
		{Name: "Carrier", Length: 5},
		{Name: "Battleship", Length: 4},
		{Name: "Cruiser", Length: 3},
		{Name: "Submarine", Length: 3},
		{Name: "Destroyer", Length: 2},
	}
}

// TestRoster is a single one-cell ship for abbreviated matches.
func TestRoster() Roster {
	return Roster{{Name: "TestShip", Length: 1}}
}

func RosterByName(name string) (Roster, error) {
	switch strings.ToLower(name) {
	case RosterStandard:
		return StandardRoster(), nil
	case RosterTest:
		return TestRoster(), nil
	}
	return nil, fmt.Errorf("unknown fleet %q", name)
}

// ParseCoordinate converts text such as "A1" or "j10" into a zero-based
// coordinate on a size×size board.
func ParseCoordinate(text string, size int) (Coordinate, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	if len(text) < 2 || strings.ContainsAny(text, " \t") {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}

	row := int(text[0] - 'A')
	if text[0] < 'A' || row >= size {
		return Coordinate{}, fmt.Errorf("%w: row %q out of range", ErrInvalidCoordinate, text[:1])
	}

	number, err := strconv.Atoi(text[1:])
	if err != nil || text[1] < '0' || text[1] > '9' {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}
	if number < 1 || number > size {
		return Coordinate{}, fmt.Errorf("%w: column %d out of range", ErrInvalidCoordinate, number)
	}
	return Coordinate{Row: row, Col: number - 1}, nil
}

func ParseOrientation(text string) (Orientation, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "H":
		return Horizontal, nil
	case "V":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("%w: %q", ErrInvalidOrientation, text)
}
