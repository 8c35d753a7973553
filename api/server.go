package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	"github.com/saeidalz13/battleship-hotseat/internal/config"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
	"go.uber.org/zap"
)

const (
	defaultPort     int           = 8000
	shutdownTimeout time.Duration = time.Second * 10

	RouteBattleship = "GET /battleship"
)

type Server struct {
	port           int
	stage          string
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	dbManager      sqlc.DbManager
	logger         *zap.Logger
}

type Option func(*Server) error

func NewServer(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	dbManager sqlc.DbManager,
	logger *zap.Logger,
	optFuncs ...Option,
) (*Server, error) {
	server := Server{
		port:           defaultPort,
		stage:          config.StageDev,
		sessionManager: sessionManager,
		gameManager:    gameManager,
		dbManager:      dbManager,
		logger:         logger,
	}

	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			return nil, err
		}
	}

	return &server, nil
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != config.StageProd && stage != config.StageDev {
			return fmt.Errorf("invalid type of development stage: %s", stage)
		}
		s.stage = stage
		return nil
	}
}

// In dev every origin is allowed so a local client on
// another port can connect.
func (s *Server) checkOrigin() func(r *http.Request) bool {
	if s.stage == config.StageDev {
		return func(r *http.Request) bool { return true }
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	rp := NewRequestProcessor(s.sessionManager, s.gameManager, s.dbManager.Analytics, s.checkOrigin(), s.logger)

	mux := http.NewServeMux()
	mux.Handle(RouteBattleship, rp)
	return mux
}

// Run serves until ctx is cancelled, then shuts the
// listener down and waits for in-flight handshakes.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 5,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.Int("port", s.port), zap.String("stage", s.stage))
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
