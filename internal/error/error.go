package error

import "fmt"

const (
	ConstErrAttackFailed    = "attack operation failed"
	ConstErrPlacementFailed = "ship placement failed"
	ConstErrNoGame          = "no game started on this session"
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrGameIsNil(gameUuid string) error {
	return fmt.Errorf("game with this uuid is nil, uuid: %s", gameUuid)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id was not found, session id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session with this id is nil, session id: %s", sessionId)
}

func ErrSignalAbsent() error {
	return fmt.Errorf("incoming req payload must contain 'code' field")
}

func ErrSessionGameNotStarted(sessionId string) error {
	return fmt.Errorf("session has no game yet, session id: %s", sessionId)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y)
}

func ErrInvalidPhase(expected, got string) error {
	return fmt.Errorf("operation not allowed in this game phase\texpected: %s\tgot: %s", expected, got)
}


func ErrInvalidStage(stage string) error {
	return fmt.Errorf("stage must be either dev or prod, got: %s", stage)
}

func ErrInvalidEnvValue(key, value string, err error) error {
	return fmt.Errorf("invalid value for env %s: %q; %w", key, value, err)
}
