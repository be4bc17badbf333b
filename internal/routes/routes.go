// Package routes wires handlers and middleware into the HTTP router.
package routes

import (
	"database/sql"
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/carpenike/fitcoach/internal/coach"
	"github.com/carpenike/fitcoach/internal/handlers"
	"github.com/carpenike/fitcoach/internal/middleware"
)

// Options collects the dependencies of the router.
type Options struct {
	DB        *sql.DB
	Sessions  *scs.SessionManager
	Templates handlers.TemplateCache
	Coach     *coach.Coach
	Logger    zerolog.Logger
	// Static serves /static/*. It should contain the assets at its root.
	Static fs.FS
	// LoginLimiter throttles POST /login when set.
	LoginLimiter *middleware.RateLimiter
	// ChatLimiter throttles POST /chat per user when set.
	ChatLimiter *middleware.RateLimiter
}

// New builds the application router.
func New(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	health := &handlers.Health{DB: opts.DB}
	r.Method(http.MethodGet, "/health", health)
	if opts.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(opts.Static)))
	}

	auth := &handlers.Auth{DB: opts.DB, Sessions: opts.Sessions, Templates: opts.Templates}
	chat := &handlers.Chat{Coach: opts.Coach, Sessions: opts.Sessions, Templates: opts.Templates}
	logs := &handlers.Logs{DB: opts.DB, Sessions: opts.Sessions, Templates: opts.Templates}
	summary := &handlers.Summary{DB: opts.DB, Templates: opts.Templates}

	r.Group(func(r chi.Router) {
		r.Use(opts.Sessions.LoadAndSave)
		r.Use(middleware.CSRFProtect(opts.Sessions))

		r.Get("/login", auth.LoginPage)
		loginSubmit := http.Handler(http.HandlerFunc(auth.LoginSubmit))
		if opts.LoginLimiter != nil {
			loginSubmit = opts.LoginLimiter.Limit(loginSubmit)
		}
		r.Method(http.MethodPost, "/login", loginSubmit)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(opts.Sessions, opts.DB))

			r.Get("/", handlers.Index)
			r.Get("/chat", chat.Show)
			chatSend := http.Handler(http.HandlerFunc(chat.Send))
			if opts.ChatLimiter != nil {
				chatSend = opts.ChatLimiter.Limit(chatSend)
			}
			r.Method(http.MethodPost, "/chat", chatSend)
			r.Post("/chat/reset", chat.Reset)
			r.Get("/logs", logs.List)
			r.Get("/logs/new", logs.NewForm)
			r.Post("/logs", logs.Create)
			r.Get("/summary", summary.Show)
		})
	})

	return r
}
