package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestFetchCodeFromMsg(t *testing.T) {
	bsm := NewBattleshipSessionManager(zaptest.NewLogger(t))

	tests := []struct {
		name        string
		payload     string
		expected    uint8
		expectedErr error
	}{
		{name: "attack", payload: `{"code":9,"payload":{"x":1,"y":2}}`, expected: CodeAttack},
		{name: "zero code is valid", payload: `{"code":0}`, expected: CodeSessionID},
		{name: "absent", payload: `{"payload":{"x":1}}`, expected: 255, expectedErr: cerr.ErrSignalAbsent()},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := bsm.FetchCodeFromMsg([]byte(test.payload))
			assert.Equal(t, test.expected, code)
			if test.expectedErr != nil {
				assert.EqualError(t, err, test.expectedErr.Error())
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := bsm.FetchCodeFromMsg([]byte("not json"))
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	bsm := NewBattleshipSessionManager(zaptest.NewLogger(t))

	session := bsm.GenerateNewSession(nil)
	assert.NotEmpty(t, session.Id())
	assert.Equal(t, 1, bsm.CountSessions())
	assert.Nil(t, session.Game())

	found, err := bsm.FindSession(session.Id())
	require.NoError(t, err)
	assert.Same(t, session, found)

	game := mb.NewGame()
	session.SetGame(game)
	assert.Same(t, game, found.Game())

	bsm.TerminateSession(session.Id())
	assert.Equal(t, 0, bsm.CountSessions())

	_, err = bsm.FindSession(session.Id())
	assert.EqualError(t, err, cerr.ErrSessionNotFound(session.Id()).Error())

	err = bsm.ReconnectSession(session.Id(), &websocket.Conn{})
	assert.Error(t, err)
}

func TestSessionManagerCleanup(t *testing.T) {
	bsm := NewBattleshipSessionManager(zaptest.NewLogger(t))
	bsm.GenerateNewSession(nil)
	bsm.GenerateNewSession(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bsm.CleanupPeriodically(ctx, time.Millisecond*20, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return bsm.CountSessions() == 0 }, time.Second, time.Millisecond*10)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop after cancel")
	}
}

func TestWaitForReconnection(t *testing.T) {
	t.Run("grace period over", func(t *testing.T) {
		session := NewSession("s1", nil, zaptest.NewLogger(t))
		assert.False(t, session.waitForReconnection(nil, time.Millisecond*20))
	})

	t.Run("client comes back", func(t *testing.T) {
		session := NewSession("s2", nil, zaptest.NewLogger(t))
		newConn := &websocket.Conn{}

		go func() {
			time.Sleep(time.Millisecond * 20)
			session.reconnect(newConn)
		}()

		assert.True(t, session.waitForReconnection(nil, time.Second*2))
		assert.Same(t, newConn, session.Conn())
	})

	t.Run("already reconnected", func(t *testing.T) {
		session := NewSession("s3", nil, zaptest.NewLogger(t))
		session.reconnect(&websocket.Conn{})

		// the stale conn was already swapped out
		assert.True(t, session.waitForReconnection(nil, time.Hour))
	})
}

func TestOnConnErr(t *testing.T) {
	session := NewSession("s", nil, zaptest.NewLogger(t))

	tests := []struct {
		name     string
		err      error
		expected uint8
	}{
		{name: "timeout", err: timeoutErr{}, expected: ConnLoopRetry},
		{name: "try again later", err: &websocket.CloseError{Code: websocket.CloseTryAgainLater}, expected: ConnLoopRetry},
		{name: "abnormal closure", err: &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, expected: ConnLoopAbnormalClosureRetry},
		{name: "normal closure", err: &websocket.CloseError{Code: websocket.CloseNormalClosure}, expected: ConnLoopBreak},
		{name: "going away", err: &websocket.CloseError{Code: websocket.CloseGoingAway}, expected: ConnLoopBreak},
		{name: "protocol error", err: &websocket.CloseError{Code: websocket.CloseProtocolError}, expected: ConnLoopBreak},
		{name: "unsupported data", err: &websocket.CloseError{Code: websocket.CloseUnsupportedData}, expected: ConnLoopBreak},
		{name: "unexpected", err: errors.New("boom"), expected: ConnLoopBreak},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, session.onConnErr(test.err))
		})
	}

	assert.Equal(t, ConnLoopAbnormalClosureRetry, session.handleReadFromConnErr(&websocket.CloseError{Code: websocket.CloseAbnormalClosure}))
	assert.Equal(t, ConnLoopBreak, session.handleReadFromConnErr(timeoutErr{}))
}

func TestConnErr(t *testing.T) {
	err := NewConnErr(ConnLoopBreak).AddDesc("grace period is over")
	assert.Equal(t, ConnLoopBreak, err.Code())
	assert.Equal(t, "connection error - code: 0\tdesc: grace period is over", err.Error())

	var connErr ConnErr
	require.True(t, errors.As(error(err), &connErr))
	assert.Equal(t, ConnLoopBreak, connErr.Code())
}
