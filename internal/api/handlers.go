// Package api exposes the auth and upload workflows over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/kdimtricp/formcheck/internal/auth"
	"github.com/kdimtricp/formcheck/internal/logging"
	"github.com/kdimtricp/formcheck/internal/processing"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Auth          *auth.Service
	Uploads       *processing.Orchestrator
	DB            Pinger
	Logger        logging.Logger
	ClientOrigin  string
	MaxUploadSize int64
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func HomeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("backend is running"))
}

func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.DB.Ping(ctx); err != nil {
		app.Logger.Error(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
