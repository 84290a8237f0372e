package api

import (
	"net/http"
	"time"

	"github.com/kdimtricp/formcheck/internal/auth"
	"github.com/kdimtricp/formcheck/internal/models"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	LoginName string `json:"loginname"`
	Password  string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	Message      string              `json:"message"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
	User         *models.UserProfile `json:"user"`
}

type profileResponse struct {
	User *models.UserProfile `json:"user"`
}

type resultsResponse struct {
	Results []models.Result `json:"results"`
}

func (app *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.Auth.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "User created successfully"})
}

func (app *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		app.writeError(w, r, err)
		return
	}

	res, err := app.Auth.Login(r.Context(), req.LoginName, req.Password)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	app.writeSession(w, "Logged in successfully", res)
}

// RefreshHandler accepts the refresh token from the body or, failing that,
// from its cookie.
func (app *App) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		app.writeError(w, r, err)
		return
	}
	if req.RefreshToken == "" {
		if c, err := r.Cookie(refreshCookie); err == nil {
			req.RefreshToken = c.Value
		}
	}

	res, err := app.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	app.writeSession(w, "Token refreshed", res)
}

func (app *App) writeSession(w http.ResponseWriter, message string, res *auth.LoginResult) {
	http.SetCookie(w, secureCookie(accessCookie, res.AccessToken, app.AccessMaxAge))
	http.SetCookie(w, secureCookie(refreshCookie, res.RefreshToken, app.RefreshMaxAge))

	writeJSON(w, http.StatusOK, loginResponse{
		Message:      message,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	})
}

// secureCookie builds a token cookie. The web client lives on another
// origin, so SameSite must be None, which browsers only accept with Secure.
func secureCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
}

func (app *App) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := app.Auth.Profile(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{User: profile})
}

func (app *App) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	results, err := app.Auth.UserResults(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}
