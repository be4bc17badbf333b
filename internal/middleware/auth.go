package middleware

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog/hlog"

	"github.com/carpenike/fitcoach/internal/models"
)

type contextKey string

// UserContextKey holds the authenticated *models.User in the request context.
const UserContextKey contextKey = "user"

// SessionUserID is the session key storing the logged-in user's id.
const SessionUserID = "userID"

// RequireAuth redirects unauthenticated users to the login page. It must run
// inside scs LoadAndSave so the session is available.
func RequireAuth(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionUserID)
			if userID == 0 {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			user, err := models.GetUserByID(db, userID)
			if err != nil {
				hlog.FromRequest(r).Warn().Err(err).Int64("user_id", userID).Msg("failed to load session user")
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
// Returns nil if no user is set (should not happen behind RequireAuth).
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(UserContextKey).(*models.User)
	return u
}
