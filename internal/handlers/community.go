package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func ListCommunitiesHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := optionalUUIDQuery(r, "game_id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		list, err := repo.ListCommunities(r.Context(), gameID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetCommunityHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := repo.GetCommunityBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func ListGuidesHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := optionalUUIDQuery(r, "game_id")
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		list, err := repo.ListPlayGuides(r.Context(), gameID)
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetGuideHandler(logger *logrus.Logger, repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := repo.GetPlayGuideBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			respondErr(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}
