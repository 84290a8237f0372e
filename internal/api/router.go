package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(app.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", HomeHandler)
	r.Get("/ping", PingHandler)
	r.Get("/healthz", app.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", app.RegisterHandler)
		r.Post("/login", app.LoginHandler)
		r.Post("/refresh", app.RefreshHandler)
		r.Get("/profile", app.ProfileHandler)
		r.Get("/results", app.ResultsHandler)
		r.Post("/upload", app.UploadHandler)
		r.Get("/result/{jobId}", app.ResultHandler)
	})

	return r
}
