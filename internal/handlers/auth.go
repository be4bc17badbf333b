package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog/hlog"

	"github.com/carpenike/fitcoach/internal/middleware"
	"github.com/carpenike/fitcoach/internal/models"
)

// Auth holds dependencies for authentication handlers.
type Auth struct {
	DB        *sql.DB
	Sessions  *scs.SessionManager
	Templates TemplateCache
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if a.Sessions.GetInt64(r.Context(), middleware.SessionUserID) != 0 {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Error": r.URL.Query().Get("error"),
	}
	if err := a.Templates.Render(w, r, "login.html", data); err != nil {
		serverError(w, r, "login template", err)
	}
}

// LoginSubmit signs a user in, creating the account on first use.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		loginError(w, r, "아이디와 비밀번호를 입력해줘.")
		return
	}

	user, created, err := models.LoginOrRegister(a.DB, username, password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		hlog.FromRequest(r).Info().Str("username", username).Msg("login rejected")
		loginError(w, r, "비밀번호가 맞지 않아.")
		return
	}
	if err != nil {
		serverError(w, r, "login or register", err)
		return
	}

	// Renew session token to prevent fixation.
	if err := a.Sessions.RenewToken(r.Context()); err != nil {
		serverError(w, r, "session renew", err)
		return
	}
	a.Sessions.Put(r.Context(), middleware.SessionUserID, user.ID)
	newConversation(r.Context(), a.Sessions)

	hlog.FromRequest(r).Info().
		Int64("user_id", user.ID).
		Bool("created", created).
		Msg("user logged in")
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// Logout destroys the session and redirects to login.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Destroy(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("session destroy")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
