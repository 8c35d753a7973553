package connection

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	"go.uber.org/zap"
)

const (
	maxWriteWsRetries uint8 = 2
	backOffFactor     uint8 = 2
)

const (
	MessageTypeJSON uint8 = iota
)

type ConnectionHandler interface {
	reconnect(conn *websocket.Conn)
	waitForReconnection(staleConn *websocket.Conn, gracePeriod time.Duration) bool
	handleReadFromConnErr(err error) uint8
	writeToConnWithRetry(msg interface{}, msgType uint8) error
	onConnErr(err error) uint8
}

// Session is one browser tab driving one hot-seat game.
// The session outlives its websocket connection so that a
// client can reconnect and keep playing the same game.
type Session struct {
	id                     string
	conn                   *websocket.Conn
	game                   *mb.Game
	reconnectionSignalChan chan bool
	createdAt              time.Time
	mu                     sync.RWMutex
	logger                 *zap.Logger
}

var _ ConnectionHandler = (*Session)(nil)

func NewSession(id string, conn *websocket.Conn, logger *zap.Logger) *Session {
	return &Session{
		id:                     id,
		conn:                   conn,
		reconnectionSignalChan: make(chan bool),
		createdAt:              time.Now(),
		logger:                 logger.With(zap.String("session_id", id)),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// Game is nil until the client asks for a new game.
func (s *Session) Game() *mb.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

func (s *Session) SetGame(game *mb.Game) {
	s.mu.Lock()
	s.game = game
	s.mu.Unlock()
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) remoteAddr() string {
	conn := s.Conn()
	if conn == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}

func (s *Session) onConnErr(err error) uint8 {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		s.logger.Warn("timeout error", zap.Error(err))
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		s.logger.Warn("high server load/traffic error", zap.Error(err))
		return ConnLoopRetry
	}

	// Happens if a mobile browser puts the tab to background
	if websocket.IsCloseError(err, websocket.CloseAbnormalClosure) {
		s.logger.Info("abnormal closure error", zap.Error(err))
		return ConnLoopAbnormalClosureRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		s.logger.Info("close error", zap.Error(err))
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension) {
		s.logger.Error("critical error", zap.Error(err))
		return ConnLoopBreak
	}

	/*
		This might mean that the client is not from the application.
		Breaking not to overwhelm the server with invalid payloads (e.g. binary data)
	*/
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived) {
		s.logger.Warn("non-critical error", zap.Error(err))
		return ConnLoopBreak
	}

	s.logger.Warn("unexpected error", zap.Error(err))
	return ConnLoopBreak
}

// Writes to the connection of that session. It also
// handles the abnormal or other types of errors of
// writing to a websocket connection.
func (s *Session) writeToConnWithRetry(msg interface{}, msgType uint8) error {
	var retries uint8

	for {
		conn := s.Conn()
		var err error

		switch msgType {
		case MessageTypeJSON:
			err = conn.WriteJSON(msg)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid message type to write with retry")
		}

		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteWsRetries {
				retries++
				s.logger.Info("writing to ws failed; retrying...", zap.String("remote_addr", s.remoteAddr()), zap.Uint8("retry", retries))
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue
			}
			return NewConnErr(ConnLoopBreak).AddDesc("max retries reached for writing to ws")

		case ConnLoopAbnormalClosureRetry:
			return NewConnErr(ConnLoopAbnormalClosureRetry)

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop due to: " + err.Error())
		}
	}
}

// Reads cannot be retried on the same connection, so every
// read error either waits for a reconnection or ends the session.
func (s *Session) handleReadFromConnErr(err error) uint8 {
	if s.onConnErr(err) == ConnLoopAbnormalClosureRetry {
		return ConnLoopAbnormalClosureRetry
	}

	s.logger.Info("break ws conn loop", zap.String("remote_addr", s.remoteAddr()), zap.Error(err))
	return ConnLoopBreak
}

func (s *Session) reconnect(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Signal for reconnection
	close(s.reconnectionSignalChan)

	// Unblocks a read still pending on the stale conn
	if s.conn != nil {
		s.conn.Close()
	}

	// Setting the new fields for the session
	s.conn = conn
	s.reconnectionSignalChan = make(chan bool)
}

// Blocks until the client replaces staleConn or the grace period
// is over. Returns true if the client came back.
func (s *Session) waitForReconnection(staleConn *websocket.Conn, gracePeriod time.Duration) bool {
	s.mu.RLock()
	signal := s.reconnectionSignalChan
	alreadyReconnected := s.conn != staleConn
	s.mu.RUnlock()

	if alreadyReconnected {
		return true
	}

	s.logger.Info("starting grace period", zap.Duration("grace_period", gracePeriod))
	timer := time.NewTimer(gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		s.logger.Info("grace period is over")
		return false

	case <-signal:
		s.logger.Info("client reconnected")
		return true
	}
}
