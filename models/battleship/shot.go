package battleship

type ShotOutcome uint8

const (
	ShotMiss ShotOutcome = iota
	ShotHit
)

func (o ShotOutcome) String() string {
	switch o {
	case ShotHit:
		return "hit"
	default:
		return "miss"
	}
}

// FireResult is the outcome of a single shot. ShipName and
// HasSunk are only meaningful when Outcome is ShotHit.
type FireResult struct {
	Outcome  ShotOutcome
	ShipName string
	HasSunk  bool
}

func Miss() FireResult {
	return FireResult{Outcome: ShotMiss}
}

func Hit(shipName string, hasSunk bool) FireResult {
	return FireResult{Outcome: ShotHit, ShipName: shipName, HasSunk: hasSunk}
}

func (fr FireResult) IsHit() bool {
	return fr.Outcome == ShotHit
}
