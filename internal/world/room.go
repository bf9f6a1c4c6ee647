package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Tile runes used in room asset files.
const (
	tileOpen    = '.'
	tileBlocked = '#'
	tileSeat    = 's'
)

// Room is a room preset loaded from asset files. Tiles encode the walkable
// grid one string per row: '.' open floor, '#' blocked, 's' a sittable cell.
type Room struct {
	Name         string   `json:"name"`
	Tiles        []string `json:"tiles"`
	AmbientTrack string   `json:"ambient_track,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if len(r.Tiles) == 0 {
		el.Add(fmt.Errorf("room tiles are required"))
	}

	walkable := false
	for y, row := range r.Tiles {
		if len(r.Tiles) > 0 && len(row) != len(r.Tiles[0]) {
			el.Add(fmt.Errorf("tile row %d: length %d does not match row 0 length %d", y, len(row), len(r.Tiles[0])))
			continue
		}
		for x, t := range row {
			switch t {
			case tileOpen, tileSeat:
				walkable = true
			case tileBlocked:
			default:
				el.Add(fmt.Errorf("tile row %d col %d: unknown tile %q", y, x, string(t)))
			}
		}
	}
	if len(r.Tiles) > 0 && !walkable {
		el.Add(fmt.Errorf("room has no walkable cells"))
	}

	return el.Err()
}

// Compile builds the immutable grid for this room.
func (r *Room) Compile() (*Grid, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	cols := len(r.Tiles[0])
	rows := len(r.Tiles)
	walkable := make([]bool, cols*rows)
	var seats []Cell

	for y, row := range r.Tiles {
		for x, t := range row {
			switch t {
			case tileOpen:
				walkable[y*cols+x] = true
			case tileSeat:
				walkable[y*cols+x] = true
				seats = append(seats, Cell{X: x, Y: y})
			}
		}
	}

	return NewGrid(cols, rows, walkable, seats), nil
}
