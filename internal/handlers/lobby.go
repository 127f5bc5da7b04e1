package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/lobby"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
)

// Lobby action kinds, shared by the REST routes and the websocket "type" field.
const (
	actionGame       = "game"
	actionVisibility = "visibility"
	actionModal      = "modal"
	actionStatus     = "status"
)

// lobbyMessage is the client payload for one lobby action.
type lobbyMessage struct {
	Type    string     `json:"type,omitempty"`
	Slug    string     `json:"slug,omitempty"`
	GameID  *uuid.UUID `json:"game_id,omitempty"`
	Visible *bool      `json:"visible,omitempty"`
	Open    *bool      `json:"open,omitempty"`
	Status  string     `json:"status,omitempty"`
}

// GameResolver looks games up for SetGame actions.
type GameResolver interface {
	GetGameBySlug(ctx context.Context, slug string) (models.Game, error)
	GetGameByID(ctx context.Context, id uuid.UUID) (models.Game, error)
}

// toAction turns msg into a lobby action. A game message with neither slug nor game_id clears the game.
func toAction(ctx context.Context, games GameResolver, msg lobbyMessage) (lobby.Action, error) {
	switch msg.Type {
	case actionGame:
		var (
			g   models.Game
			err error
		)
		switch {
		case msg.GameID != nil:
			g, err = games.GetGameByID(ctx, *msg.GameID)
		case msg.Slug != "":
			g, err = games.GetGameBySlug(ctx, msg.Slug)
		default:
			return lobby.SetGame{}, nil
		}
		if err != nil {
			return nil, err
		}
		return lobby.SetGame{Game: g.Ref()}, nil
	case actionVisibility:
		if msg.Visible == nil {
			return nil, badRequest("visible is required")
		}
		return lobby.SetShowLobby{Visible: *msg.Visible}, nil
	case actionModal:
		if msg.Open == nil {
			return nil, badRequest("open is required")
		}
		if *msg.Open {
			return lobby.OpenModal{}, nil
		}
		return lobby.CloseModal{}, nil
	case actionStatus:
		st, err := lobby.ParseStatus(msg.Status)
		if err != nil {
			return nil, err
		}
		return lobby.SetMatchmakingState{Status: st}, nil
	}
	return nil, badRequest("unknown lobby action %q", msg.Type)
}

// GetLobbyHandler serves GET /api/lobby: the caller's lobby view, restored from its snapshot on first use.
func GetLobbyHandler(logger *logrus.Logger, reg *lobby.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		h, err := reg.Get(r.Context(), sessionID.String())
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, h.View())
	}
}

// LobbyActionHandler serves POST /api/lobby/{kind}. It applies one action and returns the new view.
func LobbyActionHandler(logger *logrus.Logger, reg *lobby.Registry, games GameResolver, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		var msg lobbyMessage
		if err := decodeJSON(r, &msg); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		msg.Type = kind
		action, err := toAction(r.Context(), games, msg)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		h, err := reg.Get(r.Context(), sessionID.String())
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if _, err := h.Dispatch(r.Context(), action); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, h.View())
	}
}
