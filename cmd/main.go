package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/saeidalz13/battleship-hotseat/api"
	"github.com/saeidalz13/battleship-hotseat/db"
	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	"github.com/saeidalz13/battleship-hotseat/internal/config"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Stage == config.StageProd {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbManager := sqlc.NewDbManager(nil)
	if cfg.AnalyticsEnabled() {
		psqlDb := db.MustConnectToDb(cfg.DatabaseUrl, db.DefaultMigrationDir, logger)
		defer psqlDb.Close()

		dbManager = sqlc.NewDbManager(sqlc.New(psqlDb))
	} else {
		logger.Info("DATABASE_URL not set; analytics disabled")
	}

	gameManager := mb.NewBattleshipGameManager(logger)
	go gameManager.CleanupPeriodically(ctx, cfg.GameCleanupInterval, cfg.GameMaxLifetime)

	sessionManager := mc.NewBattleshipSessionManager(logger)
	go sessionManager.CleanupPeriodically(ctx, cfg.GameCleanupInterval, cfg.GameMaxLifetime)

	server, err := api.NewServer(
		sessionManager,
		gameManager,
		dbManager,
		logger,
		api.WithPort(cfg.Port),
		api.WithStage(cfg.Stage),
	)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	if err := server.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}
