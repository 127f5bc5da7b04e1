package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/sirupsen/logrus"
)

type presenceRequest struct {
	GameID      uuid.UUID             `json:"game_id"`
	DisplayName string                `json:"display_name"`
	Platform    string                `json:"platform"`
	Status      models.PresenceStatus `json:"status"`
}

// UpsertPresenceHandler serves PUT /api/presence for the caller's session.
func UpsertPresenceHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := EnsureSession(w, r)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		var req presenceRequest
		if err := decodeJSON(r, &req); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if req.GameID == uuid.Nil {
			respondErr(w, r, logger, badRequest("game_id is required"))
			return
		}
		if req.Status == "" {
			req.Status = models.PresenceOnline
		}
		if !req.Status.Valid() {
			respondErr(w, r, logger, badRequest("invalid status %q", req.Status))
			return
		}

		p := models.Player{
			UserID:      userID,
			GameID:      req.GameID,
			DisplayName: req.DisplayName,
			Platform:    req.Platform,
			Status:      req.Status,
		}
		if err := repo.UpsertPresence(r.Context(), &p); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// ClearPresenceHandler serves DELETE /api/presence/{gameID}.
func ClearPresenceHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
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
		if err := repo.SetPresenceOffline(r.Context(), userID, gameID); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
