package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/squadup/internal/lobby"
	"github.com/jason-s-yu/squadup/internal/middleware"
	"github.com/jason-s-yu/squadup/internal/presence"
	"github.com/sirupsen/logrus"
)

// Deps bundles what the router hands to the handlers.
type Deps struct {
	Logger  *logrus.Logger
	Repo    Repository
	Lobbies *lobby.Registry
	Poller  *presence.Poller
	Colors  ColorExtractor

	// AllowedOrigins restricts CORS and websocket origins. Empty allows any http(s) origin.
	AllowedOrigins []string
}

// NewRouter mounts every route on a chi router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/healthz"))

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	lg, repo := d.Logger, d.Repo

	r.Route("/api", func(r chi.Router) {
		r.Get("/image-colors", ImageColorsHandler(lg, d.Colors))

		r.Get("/games", ListGamesHandler(lg, repo))
		r.Get("/games/{slug}", GetGameHandler(lg, repo))
		r.Get("/games/{slug}/versions", ListGameVersionsHandler(lg, repo))
		r.Get("/games/{slug}/players", AvailablePlayersHandler(lg, repo, d.Poller))

		r.Put("/presence", UpsertPresenceHandler(lg, repo))
		r.Delete("/presence/{gameID}", ClearPresenceHandler(lg, repo))

		r.Get("/communities", ListCommunitiesHandler(lg, repo))
		r.Get("/communities/{slug}", GetCommunityHandler(lg, repo))
		r.Get("/guides", ListGuidesHandler(lg, repo))
		r.Get("/guides/{slug}", GetGuideHandler(lg, repo))

		r.Get("/events", ListEventsHandler(lg, repo))
		r.Get("/events/{id}", GetEventHandler(lg, repo))
		r.Get("/events/{id}/participants", ListEventParticipantsHandler(lg, repo))
		r.Post("/events/{id}/participants", JoinEventHandler(lg, repo))
		r.Delete("/events/{id}/participants", LeaveEventHandler(lg, repo))

		r.Get("/players/{userID}/games", ListPlayerGamesHandler(lg, repo))
		r.Get("/players/{userID}/followers", ListFollowersHandler(lg, repo))
		r.Get("/players/{userID}/following", ListFollowingHandler(lg, repo))
		r.Put("/me/games", UpsertPlayerGameHandler(lg, repo))
		r.Delete("/me/games/{gameID}", RemovePlayerGameHandler(lg, repo))
		r.Post("/me/follows/{userID}", FollowHandler(lg, repo))
		r.Delete("/me/follows/{userID}", UnfollowHandler(lg, repo))

		r.Get("/lfg", ListLFGHandler(lg, repo))
		r.Post("/lfg", CreateLFGHandler(lg, repo))
		r.Delete("/lfg/{id}", DeleteLFGHandler(lg, repo))

		r.Get("/lobby", GetLobbyHandler(lg, d.Lobbies))
		for _, kind := range []string{actionGame, actionVisibility, actionModal, actionStatus} {
			r.Post("/lobby/"+kind, LobbyActionHandler(lg, d.Lobbies, repo, kind))
		}
	})

	r.Get("/lobby/ws", LobbyWSHandler(lg, d.Lobbies, d.Poller, repo, d.AllowedOrigins))
	return r
}
