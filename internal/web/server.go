package web

import (
	"net/http"

	"github.com/edvart/fighter-roulette/internal/auth"
	"github.com/edvart/fighter-roulette/internal/coordinator"
	"github.com/edvart/fighter-roulette/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	router      *chi.Mux
	coordinator *coordinator.Coordinator
	store       store.Store
	admin       *auth.AdminConfig
	events      *EventHub
}

// NewServer creates a new HTTP server. A nil admin config leaves settings open.
func NewServer(coord *coordinator.Coordinator, st store.Store, admin *auth.AdminConfig) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		coordinator: coord,
		store:       st,
		admin:       admin,
		events:      NewEventHub(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Live event stream
	r.Get("/events", s.events.HandleConnection)

	r.Route("/battles", func(r chi.Router) {
		r.Get("/", s.handleRecentBattles)
		r.Post("/", s.handleGenerateBattle)
		r.Get("/{matchupID}", s.handleGetBattle)
		r.Post("/{matchupID}/winner/{player}", s.handleAssignWinner)
		r.Delete("/{matchupID}/winner", s.handleClearWinner)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", s.handleGetSettings)

		// Changes require admin access
		r.Group(func(r chi.Router) {
			r.Use(auth.AdminMiddleware(s.admin))

			r.Put("/tier-weights", s.handleStageTierWeights)
			r.Put("/bump-weights", s.handleStageBumpWeights)
			r.Post("/commit", s.handleCommitSettings)
			r.Put("/cooldown", s.handleSetCooldown)
			r.Put("/lowest-tier", s.handleSetLowestTier)
		})
	})

	r.Get("/fighters/{name}", s.handleGetFighter)
	r.Get("/rankings", s.handleRankings)
	r.Get("/history", s.handleHistory)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// StartEvents starts the event hub goroutine.
func (s *Server) StartEvents(events <-chan coordinator.Event) {
	go s.events.Run(events)
}
