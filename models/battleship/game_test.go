package battleship

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeFleetInRows places every ship of the current player
// horizontally, one per row starting at row 0.
func placeFleetInRows(t *testing.T, game *Game) {
	t.Helper()
	for y := 0; y < len(FleetClasses); y++ {
		require.True(t, game.PlaceShipAt(0, y))
	}
}

func newBattleGame(t *testing.T) *Game {
	t.Helper()
	game := NewGame()
	placeFleetInRows(t, game)
	placeFleetInRows(t, game)
	require.Equal(t, GamePhaseBattle, game.Phase())
	return game
}

func TestNewGame(t *testing.T) {
	game := NewGame()

	assert.Len(t, game.Uuid(), 6)
	assert.Equal(t, GamePhasePlacement, game.Phase())
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())
	assert.False(t, game.PlacementFinished())
	assert.False(t, game.HasEnded())

	_, ok := game.WinnerId()
	assert.False(t, ok)

	players := game.GetPlayers()
	require.Len(t, players, 2)
	assert.Equal(t, PlayerIdOne, players[0].Id())
	assert.Equal(t, PlayerIdTwo, players[1].Id())

	next, ok := game.GetNextShipData()
	require.True(t, ok)
	assert.Equal(t, NextShipData{Name: ShipNameCarrier, Length: 5, IsHorizontal: true}, next)
}

func TestPlacementSwitchesPlayers(t *testing.T) {
	game := NewGame()

	require.True(t, game.PlaceShipAt(0, 0))
	assert.False(t, game.CanPlaceShipAt(0, 0))
	assert.True(t, game.CanPlaceShipAt(0, 1))

	// a failed placement never switches players
	assert.False(t, game.PlaceShipAt(0, 0))
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())

	for y := 1; y < len(FleetClasses)-1; y++ {
		require.True(t, game.PlaceShipAt(0, y))
		assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())
	}

	require.True(t, game.PlaceShipAt(0, len(FleetClasses)-1))
	assert.Equal(t, PlayerIdTwo, game.GetCurrentPlayerId())
	assert.False(t, game.PlacementFinished())

	// player two has an empty grid
	assert.True(t, game.CanPlaceShipAt(0, 0))

	placeFleetInRows(t, game)
	assert.True(t, game.PlacementFinished())
	assert.Equal(t, GamePhaseBattle, game.Phase())
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())

	_, ok := game.GetNextShipData()
	assert.False(t, ok)
	assert.False(t, game.PlaceShipAt(5, 5))
	assert.False(t, game.CanPlaceShipAt(5, 5))
}

func TestRotateNextShip(t *testing.T) {
	game := NewGame()

	game.RotateNextShip()
	next, ok := game.GetNextShipData()
	require.True(t, ok)
	assert.False(t, next.IsHorizontal)

	require.True(t, game.PlaceShipAt(9, 0))
	player, _ := game.FetchPlayer(PlayerIdOne)
	for y := 0; y < 5; y++ {
		assert.False(t, player.Grid().At(9, y).IsEmpty())
	}

	// rotating the battleship leaves the carrier where it is
	game.RotateNextShip()
	for y := 0; y < 5; y++ {
		assert.False(t, player.Grid().At(9, y).IsEmpty())
	}
	assert.Equal(t, 5, player.OccupiedCells())
}

func TestRotateWithNoShipLeft(t *testing.T) {
	game := newBattleGame(t)

	assert.NotPanics(t, game.RotateNextShip)
	_, ok := game.GetNextShipData()
	assert.False(t, ok)
}

func TestTakeTurnAlternates(t *testing.T) {
	game := newBattleGame(t)

	// player one fires at player two
	result := game.TakeTurn(0, 0)
	assert.Equal(t, Hit(ShipNameCarrier, false), result)
	assert.Equal(t, PlayerIdTwo, game.GetCurrentPlayerId())

	// player two fires at player one
	result = game.TakeTurn(9, 9)
	assert.Equal(t, Miss(), result)
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())

	// player one fires at the same cell again
	result = game.TakeTurn(0, 0)
	assert.Equal(t, Miss(), result)
	assert.Equal(t, PlayerIdTwo, game.GetCurrentPlayerId())

	p1, _ := game.FetchPlayer(PlayerIdOne)
	p2, _ := game.FetchPlayer(PlayerIdTwo)
	assert.Equal(t, 17, p1.OccupiedCells())
	assert.Equal(t, 16, p2.OccupiedCells())
}

func TestTakeTurnIgnoredOutsideBattle(t *testing.T) {
	game := NewGame()
	assert.Equal(t, Miss(), game.TakeTurn(0, 0))
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())
	assert.Equal(t, GamePhasePlacement, game.Phase())
}

func TestTakeTurnOutOfGrid(t *testing.T) {
	game := newBattleGame(t)

	assert.Equal(t, Miss(), game.TakeTurn(-1, 0))
	assert.Equal(t, Miss(), game.TakeTurn(0, GridSize))
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())
}

// Player one sinks player two's fleet while player two keeps missing.
func TestFullGame(t *testing.T) {
	game := NewGame()

	require.True(t, game.PlaceShipAt(0, 0))
	assert.False(t, game.CanPlaceShipAt(0, 0))
	assert.True(t, game.CanPlaceShipAt(0, 1))

	for y := 1; y < len(FleetClasses); y++ {
		require.True(t, game.PlaceShipAt(0, y))
	}
	placeFleetInRows(t, game)
	require.True(t, game.PlacementFinished())

	var last FireResult
	for y, class := range FleetClasses {
		for x := 0; x < class.Length; x++ {
			require.False(t, game.HasEnded())
			last = game.TakeTurn(x, y)
			require.True(t, last.IsHit())
			assert.Equal(t, class.Name, last.ShipName)
			assert.Equal(t, x == class.Length-1, last.HasSunk)

			if !game.HasEnded() {
				assert.Equal(t, Miss(), game.TakeTurn(9, 9))
			}
		}
	}

	assert.Equal(t, Hit(ShipNameDestroyer, true), last)
	assert.True(t, game.HasEnded())
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())

	winnerId, ok := game.WinnerId()
	require.True(t, ok)
	assert.Equal(t, PlayerIdOne, winnerId)

	// game over is terminal
	assert.Equal(t, Miss(), game.TakeTurn(0, 0))
	assert.Equal(t, GamePhaseOver, game.Phase())
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())

	snap := game.Snapshot()
	assert.Equal(t, "over", snap.Phase)
	assert.Equal(t, PlayerIdOne, snap.WinnerId)
	assert.Equal(t, [2]int{0, 5}, snap.SunkenShips)
	assert.Nil(t, snap.NextShip)
}

func TestPlayerTwoWins(t *testing.T) {
	game := newBattleGame(t)

	for y, class := range FleetClasses {
		for x := 0; x < class.Length; x++ {
			assert.Equal(t, Miss(), game.TakeTurn(9, 9))
			game.TakeTurn(x, y)
		}
	}

	assert.True(t, game.HasEnded())
	assert.Equal(t, PlayerIdTwo, game.GetCurrentPlayerId())
	winnerId, _ := game.WinnerId()
	assert.Equal(t, PlayerIdTwo, winnerId)
}

func TestResetGame(t *testing.T) {
	game := newBattleGame(t)
	gameUuid := game.Uuid()
	game.TakeTurn(0, 0)

	game.Reset()

	assert.Equal(t, gameUuid, game.Uuid())
	assert.Equal(t, GamePhasePlacement, game.Phase())
	assert.Equal(t, PlayerIdOne, game.GetCurrentPlayerId())
	for _, p := range game.GetPlayers() {
		assert.Equal(t, 0, p.OccupiedCells())
		assert.True(t, p.HasShipsLeftToPlace())
	}
}

func TestSnapshotDuringPlacement(t *testing.T) {
	game := NewGame()
	game.RotateNextShip()

	snap := game.Snapshot()
	assert.Equal(t, game.Uuid(), snap.GameUuid)
	assert.Equal(t, "placement", snap.Phase)
	assert.Equal(t, PlayerIdOne, snap.CurrentPlayerId)
	assert.Zero(t, snap.WinnerId)
	require.NotNil(t, snap.NextShip)
	assert.Equal(t, NextShipData{Name: ShipNameCarrier, Length: 5, IsHorizontal: false}, *snap.NextShip)
}
