// internal/handlers/lobby_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/lobby"
	"github.com/jason-s-yu/squadup/internal/middleware"
	"github.com/jason-s-yu/squadup/internal/presence"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	pingInterval   = 30 * time.Second
	writeTimeout   = 5 * time.Second
	countdownTick  = time.Second
	outboxCapacity = 16

	// Client actions are throttled to a burst of 10, refilling one every 100ms.
	actionEvery = 100 * time.Millisecond
	actionBurst = 10
)

// Outgoing websocket message types.
const (
	msgLobbyState = "lobby_state"
	msgPlayers    = "players"
	msgCountdown  = "countdown"
	msgError      = "error"
)

// lobbyConn is one websocket client of a session lobby.
type lobbyConn struct {
	sessionID string
	out       chan map[string]any
	logger    *logrus.Logger
}

// send queues msg without blocking. A full outbox drops the message.
func (c *lobbyConn) send(msg map[string]any) {
	select {
	case c.out <- msg:
	default:
		c.logger.WithField("session", c.sessionID).Warn("lobby outbox full, dropping message")
	}
}

func (c *lobbyConn) sendError(msg string) {
	c.send(map[string]any{"type": msgError, "message": msg})
}

// LobbyWSHandler serves /lobby/ws. The stream pushes the session's lobby view on every change,
// the available players of the active game while the lobby is shown, and a countdown tick each
// second while searching. Clients send lobby actions as {"type": "game"|"visibility"|"modal"|"status", ...}.
// allowedOrigins are CORS-style origins; empty accepts any origin.
func LobbyWSHandler(logger *logrus.Logger, reg *lobby.Registry, poller *presence.Poller, games GameResolver, allowedOrigins []string) http.HandlerFunc {
	patterns := wsOriginPatterns(allowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, sessErr := EnsureSession(w, r)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{LobbySubprotocol},
			OriginPatterns: patterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != LobbySubprotocol {
			c.Close(BadSubprotocolError, "client must speak the lobby subprotocol")
			return
		}
		if sessErr != nil {
			logger.WithError(sessErr).Warn("lobby websocket session failed")
			c.Close(InvalidSessionError, "session could not be established")
			return
		}

		holder, err := reg.Get(r.Context(), sessionID.String())
		if err != nil {
			logger.WithError(err).WithField("session", sessionID).Error("lobby restore failed")
			c.Close(LobbyUnavailableError, "lobby unavailable")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := &lobbyConn{
			sessionID: holder.SessionID,
			out:       make(chan map[string]any, outboxCapacity),
			logger:    logger,
		}
		go writePump(ctx, c, conn, logger)
		go feedPump(ctx, conn, holder, poller)

		readErr := readPump(ctx, c, conn, holder, games, logger)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// wsOriginPatterns turns origins such as "https://app.example" into the host patterns
// websocket.Accept matches against. Same-host requests are always accepted.
func wsOriginPatterns(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			o = host
		}
		if o = strings.TrimRight(o, "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// readPump applies client actions until the connection drops. It returns the read error,
// or nil on a normal close.
func readPump(ctx context.Context, c *websocket.Conn, conn *lobbyConn, holder *lobby.Holder, games GameResolver, logger *logrus.Logger) error {
	l := rate.NewLimiter(rate.Every(actionEvery), actionBurst)
	for {
		if err := l.Wait(ctx); err != nil {
			return nil
		}
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg lobbyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.sendError("invalid JSON format")
			continue
		}
		action, err := toAction(ctx, games, msg)
		if err != nil {
			conn.sendError(err.Error())
			continue
		}
		if _, err := holder.Dispatch(ctx, action); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"session": conn.sessionID,
				"action":  msg.Type,
			}).Debug("lobby action rejected")
			conn.sendError(err.Error())
		}
		// The resulting view reaches the client through feedPump.
	}
}

// feedPump forwards lobby changes, presence updates and countdown ticks to conn.
// It keeps at most one presence subscription, for the game of a visible lobby.
func feedPump(ctx context.Context, conn *lobbyConn, holder *lobby.Holder, poller *presence.Poller) {
	states, unsubscribe := holder.Subscribe()
	defer unsubscribe()

	var (
		sub     *presence.Subscription
		subGame uuid.UUID
		players <-chan presence.Update
	)
	defer func() {
		if sub != nil {
			sub.Close()
		}
	}()
	follow := func(st lobby.State) {
		want := uuid.Nil
		if st.ShowLobby && st.Game != nil {
			want = st.Game.ID
		}
		if want == subGame {
			return
		}
		if sub != nil {
			sub.Close()
			sub, players = nil, nil
		}
		subGame = want
		if want != uuid.Nil {
			sub = poller.Subscribe(want)
			players = sub.C
		}
	}

	ticker := time.NewTicker(countdownTick)
	defer ticker.Stop()

	view := holder.View()
	conn.send(map[string]any{"type": msgLobbyState, "lobby": view})
	follow(view.State)

	for {
		select {
		case <-ctx.Done():
			return
		case <-states:
			view := holder.View()
			conn.send(map[string]any{"type": msgLobbyState, "lobby": view})
			follow(view.State)
		case up, ok := <-players:
			if !ok {
				players = nil
				continue
			}
			conn.send(map[string]any{
				"type":       msgPlayers,
				"game_id":    up.GameID,
				"players":    up.Players,
				"fetched_at": up.FetchedAt,
				"stale":      up.Stale,
			})
		case <-ticker.C:
			if cd := holder.View().Countdown; cd != nil {
				conn.send(map[string]any{
					"type":              msgCountdown,
					"remaining_seconds": cd.RemainingSeconds,
					"display":           cd.Display,
				})
			}
		}
	}
}

// writePump serialises queued messages onto the socket and keeps the connection alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *lobbyConn, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.out:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("lobby: failed to marshal outgoing msg for %s: %v", conn.sessionID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("lobby: failed to write to websocket for %s: %v", conn.sessionID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("lobby: ping failed for %s: %v", conn.sessionID, err)
				return
			}
		}
	}
}
