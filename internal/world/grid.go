package world

// Cell is an integer coordinate on a room's walkable grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a room's immutable walkable matrix. It never mutates after the
// room preset is compiled, so it is safe for concurrent reads without locking.
type Grid struct {
	cols     int
	rows     int
	walkable []bool
	seats    []Cell
}

func NewGrid(cols, rows int, walkable []bool, seats []Cell) *Grid {
	w := make([]bool, cols*rows)
	copy(w, walkable)
	s := make([]Cell, len(seats))
	copy(s, seats)
	return &Grid{
		cols:     cols,
		rows:     rows,
		walkable: w,
		seats:    s,
	}
}

func (g *Grid) Cols() int {
	return g.cols
}

func (g *Grid) Rows() int {
	return g.rows
}

// InBounds reports whether the cell lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// Walkable reports whether an actor may occupy the cell.
// Out-of-bounds cells are never walkable.
func (g *Grid) Walkable(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.walkable[y*g.cols+x]
}

// Seats returns the cells an actor may sit on.
func (g *Grid) Seats() []Cell {
	s := make([]Cell, len(g.seats))
	copy(s, g.seats)
	return s
}

// IsSeat reports whether the cell is a seat.
func (g *Grid) IsSeat(x, y int) bool {
	for _, s := range g.seats {
		if s.X == x && s.Y == y {
			return true
		}
	}
	return false
}

// FirstWalkable returns the first walkable cell in row-major order.
// The second return is false on a fully blocked grid.
func (g *Grid) FirstWalkable() (Cell, bool) {
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if g.walkable[y*g.cols+x] {
				return Cell{X: x, Y: y}, true
			}
		}
	}
	return Cell{}, false
}
