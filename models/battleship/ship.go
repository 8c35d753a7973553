package battleship

const (
	ShipNameCarrier    = "carrier"
	ShipNameBattleship = "battleship"
	ShipNameCruiser    = "cruiser"
	ShipNameSubmarine  = "submarine"
	ShipNameDestroyer  = "destroyer"
)

// ShipClass is the blueprint a fleet slot is built from.
type ShipClass struct {
	Name   string
	Length int
}

// Fleet order matters: ships are placed in this exact order.
var FleetClasses = []ShipClass{
	{Name: ShipNameCarrier, Length: 5},
	{Name: ShipNameBattleship, Length: 4},
	{Name: ShipNameCruiser, Length: 3},
	{Name: ShipNameSubmarine, Length: 3},
	{Name: ShipNameDestroyer, Length: 2},
}

type Ship struct {
	name           string
	length         int
	isHorizontal   bool
	cellsRemaining int
	hasSunk        bool
}

// NewShip panics on a non-positive length since
// fleets are only ever built from FleetClasses.
func NewShip(name string, length int) *Ship {
	if length <= 0 {
		panic("ship length must be positive")
	}

	return &Ship{
		name:           name,
		length:         length,
		isHorizontal:   true,
		cellsRemaining: length,
		hasSunk:        false,
	}
}

// NewFleet builds one ship per entry of FleetClasses, in order.
func NewFleet() []*Ship {
	fleet := make([]*Ship, 0, len(FleetClasses))
	for _, class := range FleetClasses {
		fleet = append(fleet, NewShip(class.Name, class.Length))
	}
	return fleet
}

func (sh *Ship) Name() string {
	return sh.name
}

func (sh *Ship) Length() int {
	return sh.length
}

func (sh *Ship) IsHorizontal() bool {
	return sh.isHorizontal
}

func (sh *Ship) CellsRemaining() int {
	return sh.cellsRemaining
}

func (sh *Ship) HasSunk() bool {
	return sh.hasSunk
}

// Rotates the ship. Ships already written
// to a grid keep their cells.
func (sh *Ship) ChangeDirection() {
	sh.isHorizontal = !sh.isHorizontal
}

// Hit is the only way ship health changes. Hitting a sunk
// ship keeps counting down but it stays sunk.
func (sh *Ship) Hit() bool {
	sh.cellsRemaining--
	sh.hasSunk = sh.cellsRemaining <= 0
	return sh.hasSunk
}
