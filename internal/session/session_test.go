package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/identity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookies = auth.CookieSettings{Name: "session_token", SameSite: http.SameSiteLaxMode}

func init() {
	gin.SetMode(gin.TestMode)
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()

	codec, err := auth.NewTokenCodec("test-secret", "authgate-test", time.Hour)
	require.NoError(t, err)

	return codec
}

func requestWithCookie(value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if value != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: value})
	}

	return req
}

// accepts exactly one token and reports the identity behind it
func fakeProvider(valid string, ext users.ExternalIdentity) identity.Provider {
	return identity.ProviderFunc(func(_ context.Context, token string) (*identity.Verification, error) {
		if token != valid {
			return nil, identity.ErrInvalidToken
		}

		return &identity.Verification{Identity: ext, ExpiresAt: time.Now().Add(time.Hour)}, nil
	})
}

func TestLocalResolver(t *testing.T) {
	codec := newCodec(t)
	resolver := NewLocalResolver(testCookies, codec)

	token, _, err := codec.Issue(auth.Claims{UserID: "user-1", Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)

	ident, ok := resolver.Resolve(requestWithCookie(token))
	require.True(t, ok)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, "ada@example.com", ident.Email)
	assert.Equal(t, config.ModeLocal, ident.Mode)

	tests := []struct {
		name  string
		value string
	}{
		{"no cookie", ""},
		{"garbage", "not-a-token"},
		{"tampered", token[:len(token)-4] + "AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, ok := resolver.Resolve(requestWithCookie(tt.value))
			assert.False(t, ok)
			assert.Nil(t, ident)
		})
	}
}

func TestFederatedResolver_ProvisionsOnce(t *testing.T) {
	store := users.NewMemoryStore()
	ext := users.ExternalIdentity{UID: "fb-1", Email: "grace@example.com", Name: "Grace"}
	resolver := NewFederatedResolver(testCookies, fakeProvider("good-token", ext), store)

	first, ok := resolver.Resolve(requestWithCookie("good-token"))
	require.True(t, ok)
	assert.Equal(t, "fb-1", first.ExternalUID)
	assert.Equal(t, config.ModeFederated, first.Mode)

	second, ok := resolver.Resolve(requestWithCookie("good-token"))
	require.True(t, ok)
	assert.Equal(t, first.UserID, second.UserID)

	_, ok = resolver.Resolve(requestWithCookie("bad-token"))
	assert.False(t, ok)

	_, ok = resolver.Resolve(requestWithCookie(""))
	assert.False(t, ok)
}

func TestFederatedResolver_StoreConflictIsUnauthenticated(t *testing.T) {
	store := users.NewMemoryStore()
	_, err := store.Create(context.Background(), users.NewUser{Email: "grace@example.com", ExternalUID: "fb-other"})
	require.NoError(t, err)

	ext := users.ExternalIdentity{UID: "fb-1", Email: "grace@example.com"}
	resolver := NewFederatedResolver(testCookies, fakeProvider("good-token", ext), store)

	ident, ok := resolver.Resolve(requestWithCookie("good-token"))
	assert.False(t, ok)
	assert.Nil(t, ident)
}

func TestNew(t *testing.T) {
	codec := newCodec(t)
	store := users.NewMemoryStore()
	provider := fakeProvider("x", users.ExternalIdentity{UID: "x"})

	r, err := New(&config.Config{AuthMode: config.ModeLocal}, testCookies, codec, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalResolver{}, r)

	r, err = New(&config.Config{AuthMode: config.ModeFederated}, testCookies, nil, provider, store)
	require.NoError(t, err)
	assert.IsType(t, &FederatedResolver{}, r)

	_, err = New(&config.Config{AuthMode: config.ModeLocal}, testCookies, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(&config.Config{AuthMode: config.ModeFederated}, testCookies, nil, nil, store)
	assert.Error(t, err)

	_, err = New(&config.Config{AuthMode: "saml"}, testCookies, codec, provider, store)
	assert.Error(t, err)
}

func newGuardedRouter(resolver Resolver, store users.Store) *gin.Engine {
	router := gin.New()
	router.GET("/api/profile", RequireSession(resolver, store), func(c *gin.Context) {
		id, _ := GetUserID(c)
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": user.Email})
	})

	return router
}

func TestRequireSession(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	codec := newCodec(t)

	user, err := store.Create(ctx, users.NewUser{Email: "ada@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	router := newGuardedRouter(NewLocalResolver(testCookies, codec), store)

	t.Run("valid session", func(t *testing.T) {
		token, _, err := codec.Issue(auth.Claims{UserID: user.ID, Email: user.Email})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID)
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
	})

	t.Run("account deleted after issue", func(t *testing.T) {
		token, _, err := codec.Issue(auth.Claims{UserID: "00000000-0000-0000-0000-000000000000"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	_, ok = CurrentUser(c)
	assert.False(t, ok)
}
