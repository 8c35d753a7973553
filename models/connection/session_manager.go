package connection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	"go.uber.org/zap"
)

const defaultGracePeriod time.Duration = time.Minute * 2

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error
	CountSessions() int
	CleanupPeriodically(ctx context.Context, interval, maxLifetime time.Duration)

	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	FetchCodeFromMsg(payload []byte) (uint8, error)
}

type BattleshipSessionManager struct {
	gracePeriod time.Duration
	sessions    map[string]*Session
	mu          sync.RWMutex
	logger      *zap.Logger
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

type SessionManagerOption func(*BattleshipSessionManager)

// Sets how long a dropped session waits for its client to reconnect.
func WithGracePeriod(gracePeriod time.Duration) SessionManagerOption {
	return func(bsm *BattleshipSessionManager) {
		bsm.gracePeriod = gracePeriod
	}
}

func NewBattleshipSessionManager(logger *zap.Logger, opts ...SessionManagerOption) *BattleshipSessionManager {
	initMapSize := 10

	bsm := &BattleshipSessionManager{
		sessions:    make(map[string]*Session, initMapSize),
		gracePeriod: defaultGracePeriod,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(bsm)
	}
	return bsm
}

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn, bsm.logger)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	delete(bsm.sessions, sessionId)
	bsm.mu.Unlock()

	bsm.logger.Debug("session terminated", zap.String("session_id", sessionId))
}

func (bsm *BattleshipSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := bsm.FindSession(sessionId)
	if err != nil {
		return err
	}

	session.reconnect(conn)
	return nil
}

func (bsm *BattleshipSessionManager) CountSessions() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

// To ensure that there is no dangling sessions, the session
// manager marks sessions living longer than maxLifetime as
// stale and deletes them. Returns when ctx is done.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context, interval, maxLifetime time.Duration) {
	assumedClosedConns := 10
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
		}

		toDelete := make([]string, 0, assumedClosedConns)

		bsm.mu.Lock()
		for ID, session := range bsm.sessions {
			if time.Since(session.CreatedAt()) > maxLifetime {
				toDelete = append(toDelete, ID)
			}
		}
		for _, ID := range toDelete {
			delete(bsm.sessions, ID)
		}
		bsm.mu.Unlock()

		if len(toDelete) > 0 {
			bsm.logger.Info("stale sessions removed", zap.Strings("session_ids", toDelete))
		}
	}
}

// Writes msg to the session. If the connection dropped abnormally
// the write is repeated once on the reconnected connection.
func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	staleConn := session.Conn()
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	// The write hit a conn that was swapped out meanwhile
	if staleConn != session.Conn() {
		return session.writeToConnWithRetry(msg, msgType)
	}

	connErr, ok := err.(ConnErr)
	if !ok {
		return err
	}

	switch connErr.Code() {
	case ConnLoopAbnormalClosureRetry:
		if !session.waitForReconnection(staleConn, bsm.gracePeriod) {
			return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + session.Id())
		}
		return session.writeToConnWithRetry(msg, msgType)

	default:
		return connErr
	}
}

// Reads the next message of the session. An abnormal closure
// pauses the read until the client reconnects or the grace
// period runs out.
func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	for {
		conn := session.Conn()
		messageType, payload, err := conn.ReadMessage()
		if err == nil {
			return messageType, payload, nil
		}

		// The client came back before this read noticed the drop
		if conn != session.Conn() {
			continue
		}

		switch session.handleReadFromConnErr(err) {
		case ConnLoopAbnormalClosureRetry:
			if !session.waitForReconnection(conn, bsm.gracePeriod) {
				return -1, []byte{}, NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + session.Id())
			}

		default:
			return -1, []byte{}, err
		}
	}
}

func (bsm *BattleshipSessionManager) FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal struct {
		Code *uint8 `json:"code"`
	}
	const randomInvalidCode uint8 = 255

	if err := json.Unmarshal(payload, &signal); err != nil {
		return randomInvalidCode, err
	}

	if signal.Code == nil {
		return randomInvalidCode, cerr.ErrSignalAbsent()
	}

	return *signal.Code, nil
}
