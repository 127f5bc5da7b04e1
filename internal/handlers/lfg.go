package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
)

func ListLFGHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := optionalUUIDQuery(r, "game_id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		limit, err := intQuery(r, "limit", 0)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		posts, err := repo.ListLFGPosts(r.Context(), gameID, limit)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	}
}

type lfgRequest struct {
	GameID    uuid.UUID `json:"game_id"`
	Platform  string    `json:"platform"`
	Message   string    `json:"message"`
	SlotsOpen int       `json:"slots_open"`
}

// CreateLFGHandler serves POST /api/lfg.
func CreateLFGHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		var req lfgRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if req.GameID == uuid.Nil {
			respondErr(w, r, logger, badRequest("game_id is required"))
			return
		}
		post := models.LFGPost{
			UserID:    userID,
			GameID:    req.GameID,
			Platform:  req.Platform,
			Message:   req.Message,
			SlotsOpen: req.SlotsOpen,
		}
		if err := repo.CreateLFGPost(r.Context(), &post); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

// DeleteLFGHandler removes one of the caller's own posts.
func DeleteLFGHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		id, err := uuidParam(r, "id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if err := repo.DeleteLFGPost(r.Context(), id, userID); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
