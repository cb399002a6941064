package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/handlers"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
)

// Deps groups everything the route table needs.
type Deps struct {
	JWT         *middleware.JWTAuth
	AuthLimiter *middleware.RateLimiter
	Logger      *zap.Logger
	FrontendURL string

	Auth       *handlers.AuthHandler
	Training   *handlers.TrainingHandler
	Content    *handlers.ContentHandler
	Visibility *handlers.VisibilityHandler
	Imports    *handlers.ImportHandler
	Stats      *handlers.StatsHandler
	WebSocket  http.HandlerFunc
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(d.AuthLimiter.Middleware)
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
			r.Post("/refresh", d.Auth.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(d.JWT.Middleware)
				r.Post("/logout", d.Auth.Logout)
				r.Get("/me", d.Auth.Me)
				r.Put("/me", d.Auth.UpdateMe)
				r.Put("/password", d.Auth.ChangePassword)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(d.JWT.Middleware)

			// ──── Training ────
			r.Route("/training", func(r chi.Router) {
				r.Get("/", d.Training.Current)
				r.Delete("/", d.Training.Clear)
				r.Post("/setup", d.Training.Setup)
				r.Post("/next", d.Training.Next)
				r.Post("/answer", d.Training.Answer)
				r.Post("/resume", d.Training.Resume)
				r.Get("/history", d.Training.History)
			})

			// ──── Themes, levels and words ────
			r.Route("/themes", func(r chi.Router) {
				r.Get("/", d.Content.ListThemes)
				r.Post("/", d.Content.CreateTheme)
				r.Put("/{id}", d.Content.RenameTheme)
				r.Delete("/{id}", d.Content.DeleteTheme)
				r.Get("/{id}/levels", d.Content.ListLevels)
				r.Post("/{id}/levels", d.Content.CreateLevel)
				r.Put("/{id}/levels/{levelID}/active", d.Content.SetLevelActive)
				r.Get("/{id}/words", d.Content.ListWords)
				r.Post("/{id}/words", d.Content.CreateWord)
			})

			r.Route("/words", func(r chi.Router) {
				r.Get("/favorites", d.Content.ListFavorites)
				r.Put("/{id}", d.Content.UpdateWord)
				r.Delete("/{id}", d.Content.DeleteWord)
				r.Put("/{id}/favorite", d.Content.ToggleFavorite)
			})

			// ──── Flashcard sets ────
			r.Route("/sets", func(r chi.Router) {
				r.Get("/", d.Content.ListSets)
				r.Post("/", d.Content.CreateSet)
				r.Get("/{id}", d.Content.GetSet)
				r.Put("/{id}", d.Content.RenameSet)
				r.Delete("/{id}", d.Content.DeleteSet)
				r.Post("/{id}/cards", d.Content.CreateCard)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Put("/{id}", d.Content.UpdateCard)
				r.Delete("/{id}", d.Content.DeleteCard)
			})

			// ──── Visibility ────
			r.Route("/visibility/{kind}/{id}", func(r chi.Router) {
				r.Post("/toggle", d.Visibility.Toggle)
				r.Put("/active", d.Visibility.SetActive)
			})

			// ──── Imports & jobs ────
			r.Post("/imports", d.Imports.Upload)
			r.Get("/jobs/{id}", d.Imports.GetJob)

			r.Get("/stats", d.Stats.Stats)

			// ──── Admin ────
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Put("/users/{id}/role", d.Auth.SetRole)
			})
		})

		// ──── WebSocket (token in query) ────
		r.Get("/ws", d.WebSocket)
	})

	return r
}
