package battleship

import (
	"time"

	"github.com/google/uuid"
)

type GamePhase uint8

const (
	GamePhasePlacement GamePhase = iota
	GamePhaseBattle
	GamePhaseOver
)

func (ph GamePhase) String() string {
	switch ph {
	case GamePhasePlacement:
		return "placement"
	case GamePhaseBattle:
		return "battle"
	case GamePhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// noWinner is the winner id of a game that has not ended.
const noWinner = 0

// Game coordinates two players sharing one screen.
//
// The current player means different things per phase. While
// placing, it is the player placing ships. During battle it is
// the player who was fired upon in the last turn, and once the
// game is over it is the winner.
//
// A Game is not safe for concurrent use; its owner serializes calls.
type Game struct {
	uuid       string
	players    [2]*Player
	currentIdx int
	phase      GamePhase
	winnerId   int
	createdAt  time.Time
}

func NewGame() *Game {
	g := &Game{
		uuid:      uuid.NewString()[:6],
		createdAt: time.Now(),
	}
	g.Reset()
	return g
}

// Reset starts a brand new match on the same game:
// fresh players, player one placing first.
func (g *Game) Reset() {
	g.players = [2]*Player{NewPlayer(PlayerIdOne), NewPlayer(PlayerIdTwo)}
	g.currentIdx = 0
	g.phase = GamePhasePlacement
	g.winnerId = noWinner
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

func (g *Game) Phase() GamePhase {
	return g.phase
}

// returns the players in the order of player one then player two.
func (g *Game) GetPlayers() []*Player {
	return []*Player{g.players[0], g.players[1]}
}

func (g *Game) FetchPlayer(id int) (*Player, bool) {
	for _, p := range g.players {
		if p.Id() == id {
			return p, true
		}
	}
	return nil, false
}

func (g *Game) currentPlayer() *Player {
	return g.players[g.currentIdx]
}

func (g *Game) swapCurrentPlayer() {
	g.currentIdx = 1 - g.currentIdx
}

func (g *Game) GetCurrentPlayerId() int {
	return g.currentPlayer().Id()
}

// ok is false unless the game is over.
func (g *Game) WinnerId() (id int, ok bool) {
	if g.phase != GamePhaseOver {
		return noWinner, false
	}
	return g.winnerId, true
}

func (g *Game) HasEnded() bool {
	return g.phase == GamePhaseOver
}

func (g *Game) PlacementFinished() bool {
	return g.phase != GamePhasePlacement
}

// Places the next ship of the current player. Once the current
// player's fleet is complete the other player takes over, and
// once both fleets are complete the battle starts.
func (g *Game) PlaceShipAt(x, y int) bool {
	if g.phase != GamePhasePlacement {
		return false
	}

	player := g.currentPlayer()
	placed := player.PlaceNextShipAt(x, y)
	if !placed || player.HasShipsLeftToPlace() {
		return placed
	}

	g.swapCurrentPlayer()
	if !g.players[0].HasShipsLeftToPlace() && !g.players[1].HasShipsLeftToPlace() {
		g.phase = GamePhaseBattle
	}
	return placed
}

func (g *Game) CanPlaceShipAt(x, y int) bool {
	if g.phase != GamePhasePlacement {
		return false
	}
	return g.currentPlayer().CanPlaceNextShipAt(x, y)
}

// NextShipData is a read-only view of the ship waiting to be placed.
type NextShipData struct {
	Name         string `json:"name"`
	Length       int    `json:"length"`
	IsHorizontal bool   `json:"is_horizontal"`
}

// ok is false once the current player has placed the whole fleet.
func (g *Game) GetNextShipData() (data NextShipData, ok bool) {
	ship, ok := g.currentPlayer().NextShip()
	if !ok {
		return NextShipData{}, false
	}

	return NextShipData{
		Name:         ship.Name(),
		Length:       ship.Length(),
		IsHorizontal: ship.IsHorizontal(),
	}, true
}

func (g *Game) RotateNextShip() {
	if ship, ok := g.currentPlayer().NextShip(); ok {
		ship.ChangeDirection()
	}
}

// TakeTurn fires at the opponent of the player who was fired upon
// last. If the shot sinks the opponent's last ship the game ends and
// the current player becomes the winner.
//
// Shots outside the grid or outside the battle phase are misses
// that leave the game untouched.
func (g *Game) TakeTurn(x, y int) FireResult {
	if g.phase != GamePhaseBattle || !IsInGrid(x, y) {
		return Miss()
	}

	g.swapCurrentPlayer()
	target := g.currentPlayer()
	result := target.GetFiredAt(x, y)

	if !target.HasShipsLeft() {
		g.swapCurrentPlayer()
		g.phase = GamePhaseOver
		g.winnerId = g.currentPlayer().Id()
	}
	return result
}

// GameSnapshot is what the view needs to redraw the banner.
type GameSnapshot struct {
	GameUuid          string        `json:"game_uuid"`
	Phase             string        `json:"phase"`
	CurrentPlayerId   int           `json:"current_player_id"`
	PlacementFinished bool          `json:"placement_finished"`
	HasEnded          bool          `json:"has_ended"`
	WinnerId          int           `json:"winner_id,omitempty"`
	NextShip          *NextShipData `json:"next_ship,omitempty"`
	SunkenShips       [2]int        `json:"sunken_ships"`
}

func (g *Game) Snapshot() GameSnapshot {
	snap := GameSnapshot{
		GameUuid:          g.uuid,
		Phase:             g.phase.String(),
		CurrentPlayerId:   g.GetCurrentPlayerId(),
		PlacementFinished: g.PlacementFinished(),
		HasEnded:          g.HasEnded(),
		SunkenShips:       [2]int{g.players[0].SunkenShips(), g.players[1].SunkenShips()},
	}

	if winnerId, ok := g.WinnerId(); ok {
		snap.WinnerId = winnerId
	}
	if next, ok := g.GetNextShipData(); ok {
		snap.NextShip = &next
	}
	return snap
}
