package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes builds the full HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.With(s.rateLimitLogin).Post("/token", s.handleToken)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.With(s.authenticate).Get("/me", s.handleMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/users", func(r chi.Router) {
			r.With(requireAdmin).Get("/", s.handleListUsers)
			r.With(requireAdmin).Post("/", s.handleCreateUser)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.With(requireAdmin).Delete("/{id}", s.handleDeleteUser)
			r.With(requireAdmin).Patch("/{id}/active", s.handleSetActive)
		})

		r.Route("/food", func(r chi.Router) {
			r.Post("/search-and-add-food", s.handleSearchAndAdd)
			r.Post("/search-and-add-food/", s.handleSearchAndAdd)
			r.Post("/", s.handleCreateFood)
			r.Get("/", s.handleListFoods)
			r.Get("/{id}", s.handleGetFood)
		})

		r.Route("/tracker", func(r chi.Router) {
			r.Post("/add-food", s.handleAddFood)
			r.Get("/today", s.handleTrackerToday)
			r.Get("/foods/today", s.handleFoodsToday)
			r.Get("/{date}", s.handleTrackerForDay)
		})
	})

	return r
}
