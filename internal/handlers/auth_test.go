package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/carpenike/fitcoach/internal/middleware"
	"github.com/carpenike/fitcoach/internal/models"
)

func loginRequest(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// sessionValues reads the user and conversation ids from the client's session.
func sessionValues(t *testing.T, c *sessionClient) (userID int64, conversation string) {
	t.Helper()
	c.do(func(w http.ResponseWriter, r *http.Request) {
		userID = c.sm.GetInt64(r.Context(), middleware.SessionUserID)
		conversation = c.sm.GetString(r.Context(), sessionConversationID)
	}, httptest.NewRequest(http.MethodGet, "/probe", nil))
	return userID, conversation
}

func TestAuth_LoginPage_RendersForAnonymous(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	auth := &Auth{DB: db, Sessions: sm, Templates: testTemplateCache(t)}

	c := &sessionClient{sm: sm}
	rr := c.do(auth.LoginPage, httptest.NewRequest(http.MethodGet, "/login?error=oops", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "oops") {
		t.Errorf("expected error message in body, got %q", rr.Body.String())
	}
}

func TestAuth_LoginPage_RedirectsWhenLoggedIn(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	user := seedUser(t, db, "runner")
	auth := &Auth{DB: db, Sessions: sm, Templates: testTemplateCache(t)}

	c := &sessionClient{sm: sm}
	c.do(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), middleware.SessionUserID, user.ID)
	}, httptest.NewRequest(http.MethodGet, "/setup", nil))

	rr := c.do(auth.LoginPage, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rr.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/chat" {
		t.Errorf("expected redirect to /chat, got %q", loc)
	}
}

func TestAuth_LoginSubmit_RegistersNewUser(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	auth := &Auth{DB: db, Sessions: sm, Templates: testTemplateCache(t)}

	c := &sessionClient{sm: sm}
	rr := c.do(auth.LoginSubmit, loginRequest("newbie", "secret-pass"))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/chat" {
		t.Errorf("expected redirect to /chat, got %q", loc)
	}

	user, err := models.GetUserByUsername(db, "newbie")
	if err != nil {
		t.Fatalf("expected user to be created: %v", err)
	}
	userID, conversation := sessionValues(t, c)
	if userID != user.ID {
		t.Errorf("session user = %d, want %d", userID, user.ID)
	}
	if conversation == "" {
		t.Error("expected a conversation id in the session")
	}
}

func TestAuth_LoginSubmit_ExistingUser(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	user := seedUser(t, db, "runner")
	auth := &Auth{DB: db, Sessions: sm, Templates: testTemplateCache(t)}

	c := &sessionClient{sm: sm}
	rr := c.do(auth.LoginSubmit, loginRequest("runner", "password123"))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/chat" {
		t.Fatalf("expected redirect to /chat, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	userID, _ := sessionValues(t, c)
	if userID != user.ID {
		t.Errorf("session user = %d, want %d", userID, user.ID)
	}
}

func TestAuth_LoginSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "runner", "not-the-password"},
		{"missing password", "runner", ""},
		{"missing username", "", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			sm := testSessionManager()
			seedUser(t, db, "runner")
			auth := &Auth{DB: db, Sessions: sm, Templates: testTemplateCache(t)}

			c := &sessionClient{sm: sm}
			rr := c.do(auth.LoginSubmit, loginRequest(tt.username, tt.password))

			if rr.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", rr.Code)
			}
			if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/login?error=") {
				t.Errorf("expected redirect to login with error, got %q", loc)
			}
			if n, err := models.CountUsers(db); err != nil || n != 1 {
				t.Errorf("user count = %d (%v), want 1", n, err)
			}
			if userID, _ := sessionValues(t, c); userID != 0 {
				t.Errorf("expected no session user, got %d", userID)
			}
		})
	}
}

func TestAuth_Logout_DestroysSession(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	seedUser(t, db, "runner")
	auth := &Auth{DB: db, Sessions: sm, Templates: testTemplateCache(t)}

	c := &sessionClient{sm: sm}
	c.do(auth.LoginSubmit, loginRequest("runner", "password123"))

	rr := c.do(auth.Logout, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	if userID, _ := sessionValues(t, c); userID != 0 {
		t.Errorf("expected session cleared, got user %d", userID)
	}
}
