package connection

import (
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespNewGame struct {
	GameUuid        string `json:"game_uuid"`
	CurrentPlayerId int    `json:"current_player_id"`
	IsRematch       bool   `json:"is_rematch"`
}

type RespNextShip struct {
	CurrentPlayerId int              `json:"current_player_id"`
	NextShip        *mb.NextShipData `json:"next_ship,omitempty"`
}

type RespCanPlaceShip struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	CanPlace bool `json:"can_place"`
}

type RespPlaceShip struct {
	X                 int              `json:"x"`
	Y                 int              `json:"y"`
	Placed            bool             `json:"placed"`
	CurrentPlayerId   int              `json:"current_player_id"`
	PlacementFinished bool             `json:"placement_finished"`
	NextShip          *mb.NextShipData `json:"next_ship,omitempty"`
}

type RespAttack struct {
	X               int    `json:"x"`
	Y               int    `json:"y"`
	IsHit           bool   `json:"is_hit"`
	ShipName        string `json:"ship_name,omitempty"`
	HasSunk         bool   `json:"has_sunk"`
	CurrentPlayerId int    `json:"current_player_id"`
	HasEnded        bool   `json:"has_ended"`
}

type RespEndGame struct {
	WinnerId int `json:"winner_id"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
