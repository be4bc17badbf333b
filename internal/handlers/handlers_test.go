package handlers

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/carpenike/fitcoach/internal/database"
	"github.com/carpenike/fitcoach/internal/middleware"
	"github.com/carpenike/fitcoach/internal/models"
)

//go:embed testdata/templates
var testTemplateFS embed.FS

// testDB creates a fresh in-memory SQLite database with migrations applied.
func testDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := database.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testTemplateCache builds a template cache from the stub templates.
func testTemplateCache(t testing.TB) TemplateCache {
	t.Helper()

	sub, err := fs.Sub(testTemplateFS, "testdata")
	if err != nil {
		t.Fatalf("sub testdata FS: %v", err)
	}
	tc, err := NewTemplateCache(sub)
	if err != nil {
		t.Fatalf("parse test templates: %v", err)
	}
	return tc
}

// testSessionManager creates an in-memory session manager for tests.
func testSessionManager() *scs.SessionManager {
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return sm
}

// seedUser creates a user with no profile.
func seedUser(t testing.TB, db *sql.DB, username string) *models.User {
	t.Helper()
	user, err := models.CreateUser(db, username, "password123")
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return user
}

// seedLog stores one workout entry.
func seedLog(t testing.TB, db *sql.DB, userID int64, date string, ex models.Exercise, amount int) {
	t.Helper()
	if _, err := models.CreateLog(db, userID, date, ex, amount); err != nil {
		t.Fatalf("seed log: %v", err)
	}
}

// requestWithUser creates a request with the user set in context, as
// RequireAuth would.
func requestWithUser(method, target string, body url.Values, user *models.User) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, user)
	return r.WithContext(ctx)
}

// sessionClient replays session cookies across requests to handlers wrapped
// in LoadAndSave.
type sessionClient struct {
	sm      *scs.SessionManager
	cookies []*http.Cookie
}

func (c *sessionClient) do(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		r.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	c.sm.LoadAndSave(h).ServeHTTP(rr, r)
	if got := rr.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	return rr
}
