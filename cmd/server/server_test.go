package main

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/algrv/authgate/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Store:       config.StoreMemory,
		AuthMode:    config.ModeLocal,
		JWTSecret:   "test-secret",
		JWTIssuer:   "authgate-test",
		SessionTTL:  time.Hour,
		RateLimit:   "100-M",
		Cookie:      config.CookieConfig{Name: "session_token", SameSite: "lax"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	return newTestServerWith(t, testConfig())
}

func newTestServerWith(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return srv
}

type client struct {
	t      *testing.T
	srv    *Server
	jar    *cookiejar.Jar
	origin *url.URL
}

func newClient(t *testing.T, srv *Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	origin, err := url.Parse("http://authgate.test/")
	require.NoError(t, err)

	return &client{t: t, srv: srv, jar: jar, origin: origin}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, cookie := range c.jar.Cookies(c.origin) {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.srv.router.ServeHTTP(w, req)
	c.jar.SetCookies(c.origin, w.Result().Cookies())

	return w
}

func TestSessionLifecycle(t *testing.T) {
	c := newClient(t, newTestServer(t))

	w := c.do(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirectTo=%2Fdashboard", w.Header().Get("Location"))

	w = c.do(http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"correct-horse","name":"Ada"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada")

	w = c.do(http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")

	w = c.do(http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = c.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, w.Code)

	w = c.do(http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = c.do(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/profile", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperationalRoutes(t *testing.T) {
	c := newClient(t, newTestServer(t))

	w := c.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"auth_mode":"local"`)

	w = c.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/docs/swagger.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/auth/login")
}

func TestAvatarUploadsDisabledByDefault(t *testing.T) {
	c := newClient(t, newTestServer(t))

	w := c.do(http.MethodPost, "/api/auth/register", `{"email":"ada@example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodPost, "/api/profile/avatar", `{"content_type":"image/png"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func loginFrom(srv *Server, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"nobody@example.com","password":"wrong-password"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = "2-M"
	srv := newTestServerWith(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, loginFrom(srv, "203.0.113.7:4000", "198.51.100.1"))
	assert.Equal(t, http.StatusUnauthorized, loginFrom(srv, "203.0.113.7:4000", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(srv, "203.0.113.7:4000", "198.51.100.3"),
		"rotating X-Forwarded-For must not reset the limit")
}

func TestRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = "2-M"
	cfg.TrustedProxies = []string{"10.0.0.0/8"}
	srv := newTestServerWith(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, loginFrom(srv, "10.0.0.5:4000", "198.51.100.1"))
	assert.Equal(t, http.StatusUnauthorized, loginFrom(srv, "10.0.0.5:4000", "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, loginFrom(srv, "10.0.0.5:4000", "198.51.100.1"))

	assert.Equal(t, http.StatusUnauthorized, loginFrom(srv, "10.0.0.5:4000", "198.51.100.2"),
		"clients behind a trusted proxy are limited separately")
}

func TestNewServer_InvalidTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.TrustedProxies = []string{"not-an-ip"}

	_, err := NewServer(context.Background(), cfg)
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}
