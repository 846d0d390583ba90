// Defines the API server, sets up the routes using chi, and links them to
// the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prospectr/prospectr-go/internal/core"
	"github.com/prospectr/prospectr-go/internal/extractor"
	"github.com/prospectr/prospectr-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app    *core.App
	db     *sql.DB
	store  *store.Store
	runner *extractor.Runner
}

// NewServer creates a new Server instance.
func NewServer(app *core.App, runner *extractor.Runner) *Server {
	return &Server{
		app:    app,
		db:     app.DB(),
		store:  store.New(app.DB()),
		runner: runner,
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Public routes
	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// Provider catalog
			r.Get("/providers", s.handleListProviders)

			// Connected account routes
			r.Get("/accounts", s.handleListAccounts)
			r.Get("/accounts/{providerID}/connect", s.handleConnectAccount)
			r.Get("/accounts/{providerID}/callback", s.handleOAuthCallback)
			r.Post("/accounts/{providerID}/token", s.handleSetManualToken)
			r.Delete("/accounts/{providerID}", s.handleDisconnectAccount)

			// Extraction job routes
			r.Post("/jobs", s.handleCreateJob)
			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{jobID}", s.handleGetJob)
			r.Get("/jobs/{jobID}/items", s.handleListJobItems)
			r.Post("/jobs/{jobID}/action", s.handleJobAction)
			r.Get("/jobs/{jobID}/export", s.handleDownloadExport)

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				r.Get("/jobs/status", s.handleGetAdminJobsStatus)
				r.Post("/jobs/run", s.handleRunAdminJob)

				r.Get("/users", s.handleAdminListUsers)
				r.Post("/users", s.handleAdminCreateUser)
				r.Put("/users/{userID}", s.handleAdminUpdateUser)
				r.Delete("/users/{userID}", s.handleAdminDeleteUser)
			})
		})

		// WebSocket route for live job progress
		r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
			s.app.WsHub().ServeWs(w, r)
		})
	})

	return r
}
