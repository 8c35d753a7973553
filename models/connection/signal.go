package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID

	// Starts a game on the session. Sent again on
	// a session that has a game, it acts as a rematch.
	CodeNewGame

	CodeGameState
	CodeNextShip
	CodeCanPlaceShip
	CodePlaceShip
	CodeRotateShip

	// Sent once both fleets are placed
	CodeStartBattle

	CodeAttack
	CodeEndGame
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	// Sent on a reconnected session so the client
	// can redraw where it left off
	CodeSessionReconnected
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
