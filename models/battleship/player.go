package battleship

const (
	PlayerIdOne = 1
	PlayerIdTwo = 2
)

// noShipToPlace marks the fleet as fully placed.
const noShipToPlace = -1

type Player struct {
	id           int
	grid         Grid
	fleet        []*Ship
	nextShipIdx  int
	placedLength int
}

func NewPlayer(id int) *Player {
	return &Player{
		id:          id,
		grid:        NewGrid(),
		fleet:       NewFleet(),
		nextShipIdx: 0,
	}
}

func (p *Player) Id() int {
	return p.id
}

func (p *Player) Fleet() []*Ship {
	return p.fleet
}

func (p *Player) Grid() Grid {
	return p.grid
}

// NextShip returns the ship that the next placement call will
// write to the grid. ok is false once the whole fleet is placed.
func (p *Player) NextShip() (ship *Ship, ok bool) {
	if p.nextShipIdx == noShipToPlace {
		return nil, false
	}
	return p.fleet[p.nextShipIdx], true
}

func (p *Player) HasShipsLeftToPlace() bool {
	return p.nextShipIdx != noShipToPlace
}

// Checks if the next ship can be placed with its origin at (x, y).
// Every covered cell must be inside the grid and empty.
func (p *Player) CanPlaceNextShipAt(x, y int) bool {
	ship, ok := p.NextShip()
	if !ok {
		return false
	}

	for _, c := range shipSpan(x, y, ship.Length(), ship.IsHorizontal()) {
		if !c.IsInGrid() {
			return false
		}
		if !p.grid.At(c.X, c.Y).IsEmpty() {
			return false
		}
	}
	return true
}

// Places the next ship with its origin at (x, y) if possible.
// The ship's current orientation is frozen into the grid.
func (p *Player) PlaceNextShipAt(x, y int) bool {
	ship, ok := p.NextShip()
	if !ok {
		return false
	}

	if !p.CanPlaceNextShipAt(x, y) {
		return false
	}

	cell := occupiedCell(p.nextShipIdx)
	for _, c := range shipSpan(x, y, ship.Length(), ship.IsHorizontal()) {
		p.grid.set(c.X, c.Y, cell)
	}
	p.placedLength += ship.Length()

	p.nextShipIdx++
	if p.nextShipIdx == len(p.fleet) {
		p.nextShipIdx = noShipToPlace
	}
	return true
}

// GetFiredAt does not remember earlier shots: a cell is cleared
// when hit, so firing at it again reads as a miss. Coordinates
// outside the grid are a miss as well.
func (p *Player) GetFiredAt(x, y int) FireResult {
	if !IsInGrid(x, y) {
		return Miss()
	}

	idx, occupied := p.grid.At(x, y).FleetIndex()
	if !occupied {
		return Miss()
	}

	p.grid.set(x, y, CellEmpty)
	ship := p.fleet[idx]
	return Hit(ship.Name(), ship.Hit())
}

func (p *Player) HasShipsLeft() bool {
	for _, ship := range p.fleet {
		if !ship.HasSunk() {
			return true
		}
	}
	return false
}

func (p *Player) SunkenShips() int {
	sunken := 0
	for _, ship := range p.fleet {
		if ship.HasSunk() {
			sunken++
		}
	}
	return sunken
}

// Number of cells still holding a ship.
func (p *Player) OccupiedCells() int {
	occupied := 0
	for y := range p.grid {
		for x := range p.grid[y] {
			if !p.grid[y][x].IsEmpty() {
				occupied++
			}
		}
	}
	return occupied
}

// Sum of lengths of every ship placed so far.
func (p *Player) PlacedLength() int {
	return p.placedLength
}
