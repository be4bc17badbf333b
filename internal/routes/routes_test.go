package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carpenike/fitcoach/internal/coach"
	"github.com/carpenike/fitcoach/internal/database"
	"github.com/carpenike/fitcoach/internal/handlers"
	"github.com/carpenike/fitcoach/internal/llm"
	"github.com/carpenike/fitcoach/internal/middleware"
)

var stubTemplates = fstest.MapFS{
	"templates/layouts/base.html": {Data: []byte(`{{define "base"}}{{template "content" .}}{{end}}`)},
	"templates/pages/login.html": {Data: []byte(
		`{{define "login"}}<input name="csrf_token" value="{{.CSRFToken}}">{{.Error}}{{end}}`)},
	"templates/pages/chat.html": {Data: []byte(
		`{{define "content"}}{{range .Messages}}<p>{{.Content}}</p>{{end}}{{end}}`)},
	"templates/pages/logs.html":     {Data: []byte(`{{define "content"}}logs{{end}}`)},
	"templates/pages/log_form.html": {Data: []byte(`{{define "content"}}form{{end}}`)},
	"templates/pages/summary.html":  {Data: []byte(`{{define "content"}}summary{{end}}`)},
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

type client struct {
	t       *testing.T
	srv     *httptest.Server
	http    *http.Client
	cookies map[string]*http.Cookie
}

func newTestServer(t *testing.T) *client {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = database.RunMigrations(db)
	require.NoError(t, err)

	tc, err := handlers.NewTemplateCache(stubTemplates)
	require.NoError(t, err)

	sm := scs.New()
	sm.Lifetime = time.Hour

	limiter := middleware.NewRateLimiter(20, time.Minute)
	t.Cleanup(limiter.Stop)
	chatLimiter := middleware.NewUserRateLimiter(2, time.Minute)
	t.Cleanup(chatLimiter.Stop)

	h := New(Options{
		DB:           db,
		Sessions:     sm,
		Templates:    tc,
		Coach:        &coach.Coach{DB: db, Provider: llm.NewMockProvider("좋아!")},
		Logger:       zerolog.Nop(),
		Static:       fstest.MapFS{"app.css": {Data: []byte("body{}")}},
		LoginLimiter: limiter,
		ChatLimiter:  chatLimiter,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &client{
		t:   t,
		srv: srv,
		http: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
		cookies: map[string]*http.Cookie{},
	}
}

func (c *client) do(method, path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, c.srv.URL+path, body)
	require.NoError(c.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	for _, ck := range resp.Cookies() {
		c.cookies[ck.Name] = ck
	}
	b, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(b)
}

func (c *client) csrfToken() string {
	c.t.Helper()
	_, body := c.do(http.MethodGet, "/login", nil)
	m := csrfInput.FindStringSubmatch(body)
	require.Len(c.t, m, 2, "csrf token in login page: %q", body)
	return m[1]
}

// login signs in as username and returns the session's CSRF token.
func (c *client) login(username string) string {
	c.t.Helper()
	token := c.csrfToken()
	resp, _ := c.do(http.MethodPost, "/login", url.Values{
		"username":   {username},
		"password":   {"password123"},
		"csrf_token": {token},
	})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	return token
}

func TestRouter_Health(t *testing.T) {
	c := newTestServer(t)

	resp, body := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", strings.TrimSpace(body))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestRouter_Static(t *testing.T) {
	c := newTestServer(t)

	resp, body := c.do(http.MethodGet, "/static/app.css", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{}", body)
}

func TestRouter_ProtectedPagesRedirect(t *testing.T) {
	c := newTestServer(t)

	for _, path := range []string{"/", "/chat", "/logs", "/logs/new", "/summary"} {
		resp, _ := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestRouter_LoginRequiresCSRF(t *testing.T) {
	c := newTestServer(t)

	resp, _ := c.do(http.MethodPost, "/login", url.Values{"username": {"runner"}, "password": {"pw"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_LoginAndChat(t *testing.T) {
	c := newTestServer(t)
	token := c.csrfToken()

	resp, _ := c.do(http.MethodPost, "/login", url.Values{
		"username":   {"runner"},
		"password":   {"password123"},
		"csrf_token": {token},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/chat", resp.Header.Get("Location"))

	resp, body := c.do(http.MethodGet, "/chat", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "안녕 runner!")

	resp, _ = c.do(http.MethodPost, "/chat", url.Values{"message": {"안녕"}, "csrf_token": {token}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = c.do(http.MethodGet, "/chat", nil)
	assert.Contains(t, body, "좋아!")
}

func TestRouter_ChatIsRateLimitedPerUser(t *testing.T) {
	c := newTestServer(t)
	token := c.login("runner")

	for i := range 2 {
		resp, _ := c.do(http.MethodPost, "/chat", url.Values{"message": {"안녕"}, "csrf_token": {token}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode, "message %d", i+1)
	}
	resp, body := c.do(http.MethodPost, "/chat", url.Values{"message": {"안녕"}, "csrf_token": {token}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Contains(t, body, "메시지를 너무 빨리")

	// Reading the conversation is not throttled.
	resp, _ = c.do(http.MethodGet, "/chat", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	other := &client{t: t, srv: c.srv, http: c.http, cookies: map[string]*http.Cookie{}}
	otherToken := other.login("walker")
	resp, _ = other.do(http.MethodPost, "/chat", url.Values{"message": {"안녕"}, "csrf_token": {otherToken}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}
