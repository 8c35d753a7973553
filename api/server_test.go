package api

import (
	"net/http/httptest"
	"testing"

	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	"github.com/saeidalz13/battleship-hotseat/internal/config"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(opts ...Option) (*Server, error) {
	logger := zap.NewNop()
	return NewServer(
		mc.NewBattleshipSessionManager(logger),
		mb.NewBattleshipGameManager(logger),
		sqlc.NewDbManager(nil),
		logger,
		opts...,
	)
}

func TestServerOptions(t *testing.T) {
	server, err := newTestServer()
	require.NoError(t, err)
	assert.Equal(t, defaultPort, server.port)
	assert.Equal(t, config.StageDev, server.stage)

	server, err = newTestServer(WithPort(9090), WithStage(config.StageProd))
	require.NoError(t, err)
	assert.Equal(t, 9090, server.port)
	assert.Equal(t, config.StageProd, server.stage)

	_, err = newTestServer(WithPort(70000))
	assert.Error(t, err)

	_, err = newTestServer(WithStage("staging"))
	assert.Error(t, err)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest("GET", "/battleship", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	dev, err := newTestServer(WithStage(config.StageDev))
	require.NoError(t, err)
	require.NotNil(t, dev.checkOrigin())
	assert.True(t, dev.checkOrigin()(req))

	// prod falls back to the same-origin check of the upgrader
	prod, err := newTestServer(WithStage(config.StageProd))
	require.NoError(t, err)
	assert.Nil(t, prod.checkOrigin())
}

func TestUnknownRoute(t *testing.T) {
	server, err := newTestServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/unknown", nil))
	assert.Equal(t, 404, rec.Code)
}
