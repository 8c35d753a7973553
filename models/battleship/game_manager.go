package battleship

import (
	"context"
	"sync"
	"time"

	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	"go.uber.org/zap"
)

type GameManager interface {
	CreateGame() *Game
	FetchGame(gameUuid string) (*Game, error)
	TerminateGame(gameUuid string)
	CountGames() int
	CleanupPeriodically(ctx context.Context, interval, maxLifetime time.Duration)
}

type BattleshipGameManager struct {
	games  map[string]*Game
	mu     sync.RWMutex
	logger *zap.Logger
}

var _ GameManager = (*BattleshipGameManager)(nil)

func NewBattleshipGameManager(logger *zap.Logger) *BattleshipGameManager {
	return &BattleshipGameManager{
		games:  make(map[string]*Game, 10),
		logger: logger,
	}
}

func (bgm *BattleshipGameManager) CreateGame() *Game {
	game := NewGame()

	bgm.mu.Lock()
	bgm.games[game.Uuid()] = game
	bgm.mu.Unlock()

	bgm.logger.Debug("game created", zap.String("game_uuid", game.Uuid()))
	return game
}

func (bgm *BattleshipGameManager) FetchGame(gameUuid string) (*Game, error) {
	bgm.mu.RLock()
	game, prs := bgm.games[gameUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}

	if game == nil {
		return nil, cerr.ErrGameIsNil(gameUuid)
	}

	return game, nil
}

func (bgm *BattleshipGameManager) TerminateGame(gameUuid string) {
	bgm.mu.Lock()
	delete(bgm.games, gameUuid)
	bgm.mu.Unlock()

	bgm.logger.Debug("game terminated", zap.String("game_uuid", gameUuid))
}

func (bgm *BattleshipGameManager) CountGames() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.games)
}

// To ensure that there are no dangling games, the manager
// removes games that have lived longer than maxLifetime.
// Returns when ctx is done.
func (bgm *BattleshipGameManager) CleanupPeriodically(ctx context.Context, interval, maxLifetime time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			bgm.removeStaleGames(maxLifetime)
		}
	}
}

func (bgm *BattleshipGameManager) removeStaleGames(maxLifetime time.Duration) int {
	// Assuming this capacity for the slice when
	// we're cleaning up the games map.
	assumedStaleGames := 5
	toDelete := make([]string, 0, assumedStaleGames)

	bgm.mu.Lock()
	for gameUuid, game := range bgm.games {
		if time.Since(game.CreatedAt()) > maxLifetime {
			toDelete = append(toDelete, gameUuid)
		}
	}
	for _, gameUuid := range toDelete {
		delete(bgm.games, gameUuid)
	}
	bgm.mu.Unlock()

	if len(toDelete) > 0 {
		bgm.logger.Info("stale games removed", zap.Strings("game_uuids", toDelete))
	}
	return len(toDelete)
}
