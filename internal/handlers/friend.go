package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
)

// ListPlayerGamesHandler serves GET /api/players/{userID}/games.
func ListPlayerGamesHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "userID")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		games, err := repo.ListPlayerGames(r.Context(), userID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

type playerGameRequest struct {
	GameID   uuid.UUID `json:"game_id"`
	Platform string    `json:"platform"`
	Handle   string    `json:"handle"`
	Favorite bool      `json:"favorite"`
}

// UpsertPlayerGameHandler serves PUT /api/me/games.
func UpsertPlayerGameHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		var req playerGameRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if req.GameID == uuid.Nil {
			respondErr(w, r, logger, badRequest("game_id is required"))
			return
		}
		pg := models.PlayerGame{
			UserID:   userID,
			GameID:   req.GameID,
			Platform: req.Platform,
			Handle:   req.Handle,
			Favorite: req.Favorite,
		}
		if err := repo.UpsertPlayerGame(r.Context(), &pg); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, pg)
	}
}

func RemovePlayerGameHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		gameID, err := uuidParam(r, "gameID")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if err := repo.RemovePlayerGame(r.Context(), userID, gameID); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// FollowHandler serves POST /api/me/follows/{userID}.
func FollowHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		target, err := uuidParam(r, "userID")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if err := repo.Follow(r.Context(), me, target); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UnfollowHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		target, err := uuidParam(r, "userID")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if err := repo.Unfollow(r.Context(), me, target); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListFollowersHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "userID")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		list, err := repo.ListFollowers(r.Context(), userID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func ListFollowingHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "userID")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		list, err := repo.ListFollowing(r.Context(), userID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
