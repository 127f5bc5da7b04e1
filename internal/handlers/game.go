package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/squadup/internal/models"
	"github.com/jason-s-yu/squadup/internal/presence"
	"github.com/sirupsen/logrus"
)

// ListGamesHandler serves GET /api/games with optional platform, genre, tag, q, limit and offset filters.
func ListGamesHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, err := intQuery(r, "limit", 0)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		offset, err := intQuery(r, "offset", 0)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		games, err := repo.ListGames(r.Context(), models.GameFilter{
			Platform: q.Get("platform"),
			Genre:    q.Get("genre"),
			Tag:      q.Get("tag"),
			Query:    q.Get("q"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func GetGameHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := repo.GetGameBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func ListGameVersionsHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := repo.GetGameBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		versions, err := repo.ListGameVersions(r.Context(), g.ID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, versions)
	}
}

// AvailablePlayersHandler serves GET /api/games/{slug}/players. It answers from the
// shared presence feed when one is running for the game and falls back to a single fetch.
func AvailablePlayersHandler(logger *logrus.Logger, repo Repository, poller *presence.Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := repo.GetGameBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		if up, ok := poller.Latest(g.ID); ok {
			writeJSON(w, http.StatusOK, up)
			return
		}
		players, err := poller.Fetch(r.Context(), g.ID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, presence.Update{GameID: g.ID, Players: players, FetchedAt: time.Now().UTC()})
	}
}
