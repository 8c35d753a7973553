package api

import (
	"encoding/json"

	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
)

// Every incoming valid request will have this structure.
// The request is then handled by the method matching its code.
type Request struct {
	payload []byte
}

func NewRequest(payload ...[]byte) Request {
	if len(payload) == 0 {
		return Request{}
	}
	return Request{payload: payload[0]}
}

func (r Request) coordinates() (mc.ReqCoordinates, error) {
	var req mc.Message[mc.ReqCoordinates]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		return mc.ReqCoordinates{}, err
	}

	if !mb.IsInGrid(req.Payload.X, req.Payload.Y) {
		return mc.ReqCoordinates{}, cerr.ErrXorYOutOfGridBound(req.Payload.X, req.Payload.Y)
	}
	return req.Payload, nil
}

func checkPhase(game *mb.Game, expected mb.GamePhase) error {
	if game.Phase() != expected {
		return cerr.ErrInvalidPhase(expected.String(), game.Phase().String())
	}
	return nil
}

// Creates a game for the session, or resets the session's
// game in place if it already has one.
func (r Request) HandleNewGame(gm mb.GameManager, session *mc.Session) (mc.Message[mc.RespNewGame], bool) {
	resp := mc.NewMessage[mc.RespNewGame](mc.CodeNewGame)

	game := session.Game()
	isRematch := game != nil
	if isRematch {
		game.Reset()
	} else {
		game = gm.CreateGame()
		session.SetGame(game)
	}

	resp.AddPayload(mc.RespNewGame{
		GameUuid:        game.Uuid(),
		CurrentPlayerId: game.GetCurrentPlayerId(),
		IsRematch:       isRematch,
	})
	return resp, isRematch
}

func (r Request) HandleGameState(game *mb.Game) mc.Message[mb.GameSnapshot] {
	resp := mc.NewMessage[mb.GameSnapshot](mc.CodeGameState)
	resp.AddPayload(game.Snapshot())
	return resp
}

func nextShipPayload(game *mb.Game) *mb.NextShipData {
	next, ok := game.GetNextShipData()
	if !ok {
		return nil
	}
	return &next
}

func (r Request) HandleNextShip(game *mb.Game) mc.Message[mc.RespNextShip] {
	resp := mc.NewMessage[mc.RespNextShip](mc.CodeNextShip)
	resp.AddPayload(mc.RespNextShip{
		CurrentPlayerId: game.GetCurrentPlayerId(),
		NextShip:        nextShipPayload(game),
	})
	return resp
}

func (r Request) HandleRotateShip(game *mb.Game) mc.Message[mc.RespNextShip] {
	if err := checkPhase(game, mb.GamePhasePlacement); err != nil {
		resp := mc.NewMessage[mc.RespNextShip](mc.CodeRotateShip)
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	game.RotateNextShip()

	resp := r.HandleNextShip(game)
	resp.Code = mc.CodeRotateShip
	return resp
}

func (r Request) HandleCanPlaceShip(game *mb.Game) mc.Message[mc.RespCanPlaceShip] {
	resp := mc.NewMessage[mc.RespCanPlaceShip](mc.CodeCanPlaceShip)

	if err := checkPhase(game, mb.GamePhasePlacement); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	coords, err := r.coordinates()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	resp.AddPayload(mc.RespCanPlaceShip{
		X:        coords.X,
		Y:        coords.Y,
		CanPlace: game.CanPlaceShipAt(coords.X, coords.Y),
	})
	return resp
}

func (r Request) HandlePlaceShip(game *mb.Game) mc.Message[mc.RespPlaceShip] {
	resp := mc.NewMessage[mc.RespPlaceShip](mc.CodePlaceShip)

	if err := checkPhase(game, mb.GamePhasePlacement); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	coords, err := r.coordinates()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	placed := game.PlaceShipAt(coords.X, coords.Y)
	resp.AddPayload(mc.RespPlaceShip{
		X:                 coords.X,
		Y:                 coords.Y,
		Placed:            placed,
		CurrentPlayerId:   game.GetCurrentPlayerId(),
		PlacementFinished: game.PlacementFinished(),
		NextShip:          nextShipPayload(game),
	})
	return resp
}

func (r Request) HandleAttack(game *mb.Game) mc.Message[mc.RespAttack] {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)

	if err := checkPhase(game, mb.GamePhaseBattle); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	coords, err := r.coordinates()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	result := game.TakeTurn(coords.X, coords.Y)
	resp.AddPayload(mc.RespAttack{
		X:               coords.X,
		Y:               coords.Y,
		IsHit:           result.IsHit(),
		ShipName:        result.ShipName,
		HasSunk:         result.HasSunk,
		CurrentPlayerId: game.GetCurrentPlayerId(),
		HasEnded:        game.HasEnded(),
	})
	return resp
}

// ok is false while the game is still running.
func (r Request) HandleEndGame(game *mb.Game) (mc.Message[mc.RespEndGame], bool) {
	resp := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)

	winnerId, ok := game.WinnerId()
	if !ok {
		return resp, false
	}

	resp.AddPayload(mc.RespEndGame{WinnerId: winnerId})
	return resp, true
}
