package battleship

const (
	GridSize = 10

	GridValidLowerBound = 0
	GridValidUpperBound = GridSize - 1
)

// Cell is either CellEmpty or holds the fleet index of the
// occupying ship shifted by one. The grid never owns ships.
type Cell uint8

const CellEmpty Cell = 0

func occupiedCell(fleetIdx int) Cell {
	return Cell(fleetIdx + 1)
}

func (c Cell) IsEmpty() bool {
	return c == CellEmpty
}

// Returns the fleet index of the occupying ship.
// ok is false for empty cells.
func (c Cell) FleetIndex() (idx int, ok bool) {
	if c == CellEmpty {
		return -1, false
	}
	return int(c) - 1, true
}

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

func (c Coordinates) IsInGrid() bool {
	return IsInGrid(c.X, c.Y)
}

func IsInGrid(x, y int) bool {
	return x >= GridValidLowerBound && x <= GridValidUpperBound &&
		y >= GridValidLowerBound && y <= GridValidUpperBound
}

// Rows are indexed by y, columns by x.
type Grid [GridSize][GridSize]Cell

// Creates a new default grid
// All cells are CellEmpty
func NewGrid() Grid {
	return Grid{}
}

func (g Grid) At(x, y int) Cell {
	return g[y][x]
}

func (g *Grid) set(x, y int, c Cell) {
	g[y][x] = c
}

// Returns the cells a ship of this length would cover
// when its origin is at (x, y).
func shipSpan(x, y, length int, isHorizontal bool) []Coordinates {
	span := make([]Coordinates, length)
	for i := 0; i < length; i++ {
		if isHorizontal {
			span[i] = NewCoordinates(x+i, y)
		} else {
			span[i] = NewCoordinates(x, y+i)
		}
	}
	return span
}
