package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-hotseat/db/sqlc"
	cerr "github.com/saeidalz13/battleship-hotseat/internal/error"
	mb "github.com/saeidalz13/battleship-hotseat/models/battleship"
	mc "github.com/saeidalz13/battleship-hotseat/models/connection"
	"github.com/sqlc-dev/pqtype"
	"go.uber.org/zap"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	ipnet          net.IPNet
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	analytics *sqlc.AnalyticsManager,
	checkOrigin func(r *http.Request) bool,
	logger *zap.Logger,
) *RequestProcessor {
	return &RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		analytics:      analytics,
		ipnet:          findServerIpNet(logger),
		upgrader: websocket.Upgrader{
			// good average time since this is not a high-latency operation such as video streaming
			HandshakeTimeout: time.Second * 5,

			// probably more that enough but this is a good average size
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// Analytics rows are keyed by the first non-loopback IPv4
// address of the host. Falls back to loopback.
func findServerIpNet(logger *zap.Logger) net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1).To4(), Mask: net.CIDRMask(32, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		logger.Warn("failed to list network interfaces", zap.Error(err))
		return loopback
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP

			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP

			case *net.IPAddr:
				ip = v.IP
			}

			if ip4 := ip.To4(); ip4 != nil && !ip4.IsLoopback() {
				return net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}
			}
		}
	}

	logger.Warn("no non-loopback ipv4 address found; using loopback for analytics")
	return loopback
}

// Expose this method to use it in testing
func (rp *RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := rp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rp.logger.Warn("could not open websocket connection", zap.Error(err))
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		rp.logger.Info("a new connection established", zap.String("remote_addr", conn.RemoteAddr().String()))
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		rp.reconnectSession(sessionIdQuery, conn)
	}
}

// The new connection is handed over to the loop of the existing
// session, so nothing else may write to it after ReconnectSession.
func (rp *RequestProcessor) reconnectSession(sessionId string, conn *websocket.Conn) {
	if _, err := rp.sessionManager.FindSession(sessionId); err != nil {
		// This either means an expired session or invalid session ID
		_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
		conn.Close()
		return
	}

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionReconnected)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := conn.WriteJSON(resp); err != nil {
		conn.Close()
		return
	}

	if err := rp.sessionManager.ReconnectSession(sessionId, conn); err != nil {
		_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
		conn.Close()
	}
}

func (rp *RequestProcessor) recordAnalytics(record func(context.Context, pqtype.Inet) error, event string) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	if err := record(ctx, pqtype.Inet{IPNet: rp.ipnet, Valid: true}); err != nil {
		// for now not killing the game for it
		rp.logger.Warn("failed to record analytics", zap.String("event", event), zap.Error(err))
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()
	logger := rp.logger.With(zap.String("session_id", sessionId))

	defer func() {
		if game := session.Game(); game != nil {
			rp.gameManager.TerminateGame(game.Uuid())
		}
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	write := func(msg interface{}) bool {
		if err := rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
			logger.Info("failed to write to session", zap.Error(err))
			return false
		}
		return true
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after the grace period. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError(err.Error(), "incoming req payload must contain 'code' field")
			if !write(msg) {
				break sessionLoop
			}
			continue sessionLoop
		}

		req := NewRequest(payload)

		if code == mc.CodeNewGame {
			respMsg, isRematch := req.HandleNewGame(rp.gameManager, session)
			if isRematch {
				rp.recordAnalytics(rp.analytics.IncrementRematchCalledCount, "rematch_called")
			} else {
				rp.recordAnalytics(rp.analytics.IncrementGamesCreatedCount, "games_created")
			}
			logger.Info("game started", zap.String("game_uuid", respMsg.Payload.GameUuid), zap.Bool("rematch", isRematch))

			if !write(respMsg) {
				break sessionLoop
			}
			continue sessionLoop
		}

		game := session.Game()
		if game == nil && isGameCode(code) {
			msg := mc.NewMessage[mc.NoPayload](code)
			msg.AddError(cerr.ErrSessionGameNotStarted(sessionId).Error(), cerr.ConstErrNoGame)
			if !write(msg) {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch code {
		case mc.CodeGameState:
			if !write(req.HandleGameState(game)) {
				break sessionLoop
			}

		case mc.CodeNextShip:
			if !write(req.HandleNextShip(game)) {
				break sessionLoop
			}

		case mc.CodeRotateShip:
			if !write(req.HandleRotateShip(game)) {
				break sessionLoop
			}

		case mc.CodeCanPlaceShip:
			if !write(req.HandleCanPlaceShip(game)) {
				break sessionLoop
			}

		case mc.CodePlaceShip:
			respMsg := req.HandlePlaceShip(game)
			if !write(respMsg) {
				break sessionLoop
			}

			// The placement that completed the second fleet starts the battle
			if respMsg.Error == nil && respMsg.Payload.Placed && respMsg.Payload.PlacementFinished {
				logger.Info("battle started", zap.String("game_uuid", game.Uuid()))
				if !write(mc.NewMessage[mc.NoPayload](mc.CodeStartBattle)) {
					break sessionLoop
				}
			}

		// After every attack the game checks whether the target
		// has any ship left. If not, the end game message follows.
		case mc.CodeAttack:
			respMsg := req.HandleAttack(game)
			if !write(respMsg) {
				break sessionLoop
			}

			if respMsg.Error != nil {
				continue sessionLoop
			}

			if endMsg, ended := req.HandleEndGame(game); ended {
				rp.recordAnalytics(rp.analytics.IncrementGamesFinishedCount, "games_finished")
				logger.Info("game over", zap.String("game_uuid", game.Uuid()), zap.Int("winner_id", endMsg.Payload.WinnerId))
				if !write(endMsg) {
					break sessionLoop
				}
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if !write(respInvalidSignal) {
				break sessionLoop
			}
		}
	}
}

func isGameCode(code uint8) bool {
	switch code {
	case mc.CodeGameState, mc.CodeNextShip, mc.CodeRotateShip, mc.CodeCanPlaceShip, mc.CodePlaceShip, mc.CodeAttack:
		return true
	default:
		return false
	}
}
