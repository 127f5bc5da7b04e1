package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// ListEventsHandler serves GET /api/events. Past events are included only with ?all=true.
func ListEventsHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := optionalUUIDQuery(r, "game_id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		upcoming := r.URL.Query().Get("all") != "true"
		events, err := repo.ListEvents(r.Context(), gameID, upcoming)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func GetEventHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		ev, err := repo.GetEvent(r.Context(), id)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

// JoinEventHandler adds the caller to an event. A full event yields 409.
func JoinEventHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
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
		if err := repo.JoinEvent(r.Context(), id, userID); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func LeaveEventHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
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
		if err := repo.LeaveEvent(r.Context(), id, userID); err != nil {
			respondErr(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListEventParticipantsHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		list, err := repo.ListEventParticipants(r.Context(), id)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
