package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/live"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth/gothic"
)

type app struct {
	sessionManager *scs.SessionManager
	userStore      *store.UserStore
	users          *service.UserService
	tournaments    *service.TournamentService
	matches        *service.MatchService
	hub            *live.Hub
	limiter        *middleware.RateLimiter
	allowedOrigins []string
}

func newApp(cfg *config.Config, database *sqlx.DB, sessionManager *scs.SessionManager, hub *live.Hub) *app {
	userStore := store.NewUserStore(database)
	coordinator := service.NewCoordinator(database, store.NewTournamentStore(database), hub)
	return &app{
		sessionManager: sessionManager,
		userStore:      userStore,
		users:          service.NewUserService(database, userStore),
		tournaments:    service.NewTournamentService(coordinator, cfg.Defaults),
		matches:        service.NewMatchService(coordinator),
		hub:            hub,
		limiter:        middleware.NewRateLimiter(cfg.ActionRate, int(cfg.ActionRate*2)),
		allowedOrigins: cfg.AllowedOrigins,
	}
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// The session writer cannot be hijacked, so the websocket route sits outside it
	r.Get("/tournaments/{id}/live", a.serveLive)

	r.Group(func(r chi.Router) {
		r.Use(a.sessionManager.LoadAndSave)
		r.Use(middleware.LoadAuthenticatedUser(a.sessionManager, a.userStore))

		r.Get("/tournaments/{id}", a.getTournament)
		r.Get("/tournaments/{id}/groups/{groupID}/standings", a.getStandings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/me", a.getMe)
			r.Get("/tournaments", a.listTournaments)
			r.Post("/tournaments", a.createTournament)

			r.Post("/tournaments/{id}/players/{playerID}/forfeit", a.setForfeit)
			r.Post("/tournaments/{id}/reseed", a.reseed)
			r.Post("/tournaments/{id}/reset", a.reset)
			r.Post("/tournaments/{id}/playoffs", a.buildPlayoffs)

			r.Group(func(r chi.Router) {
				r.Use(a.limiter.Middleware)

				r.Post("/tournaments/{id}/matches/{matchID}/score", a.updateScore)
				r.Post("/tournaments/{id}/matches/{matchID}/veto", a.openVeto)
				r.Post("/tournaments/{id}/matches/{matchID}/veto/action", a.applyVeto)
				r.Post("/tournaments/{id}/matches/{matchID}/veto/reset", a.resetVeto)
				r.Post("/tournaments/{id}/matches/{matchID}/maps/{index}", a.recordMapResult)
			})
		})

		r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothic.BeginAuthHandler(w, r)
		})

		r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
			provider := chi.URLParam(r, "provider")
			r = r.WithContext(context.WithValue(r.Context(), "provider", provider))

			gothUser, err := gothic.CompleteUserAuth(w, r)
			if err != nil {
				httputil.BadRequest(w, "Authentication failure", err)
				return
			}

			user, err := a.users.FindOrCreateUserByProvider(r.Context(), gothUser)
			if err != nil {
				httputil.InternalServerError(w, "Failed to find or create user", err)
				return
			}

			if err := a.sessionManager.RenewToken(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to renew session", err)
				return
			}
			a.sessionManager.Put(r.Context(), "userID", user.ID.String())
			httputil.JSON(w, http.StatusOK, user)
		})

		r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
			// A signed in guest keeps its account so its tournaments stay its own
			if current := middleware.GetAuthenticatedUser(r.Context()); current != nil && current.IsGuest() {
				httputil.JSON(w, http.StatusOK, current)
				return
			}

			user, err := a.users.CreateGuestUser(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to login as guest", err)
				return
			}

			if err := a.sessionManager.RenewToken(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to renew session", err)
				return
			}
			a.sessionManager.Put(r.Context(), "userID", user.ID.String())
			httputil.JSON(w, http.StatusOK, user)
		})

		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			if err := a.sessionManager.Destroy(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to end session", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}
