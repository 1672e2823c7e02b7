package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/algrv/authgate/accounts/users"
	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/avatars"
	"codeberg.org/algrv/authgate/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookies = auth.CookieSettings{Name: "session_token", SameSite: http.SameSiteLaxMode}

type fakePresigner struct{}

func (fakePresigner) PresignUpload(_ context.Context, userID, contentType string) (*avatars.Upload, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, avatars.ErrUnsupportedType
	}

	return &avatars.Upload{
		UploadURL: "https://bucket.example.com/avatars/" + userID + "/a.png?X-Amz-Signature=sig",
		PhotoURL:  "https://cdn.example.com/avatars/" + userID + "/a.png",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

type fixture struct {
	router *gin.Engine
	store  *users.MemoryStore
	user   *users.User
	cookie *http.Cookie
}

func newFixture(t *testing.T, presigner AvatarPresigner) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := auth.NewTokenCodec("test-secret", "authgate-test", time.Hour)
	require.NoError(t, err)

	store := users.NewMemoryStore()
	user, err := store.Create(context.Background(), users.NewUser{Email: "ada@example.com", Name: "Ada", PasswordHash: "hash"})
	require.NoError(t, err)

	token, _, err := codec.Issue(auth.Claims{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api"), session.NewLocalResolver(testCookies, codec), store, presigner)

	return &fixture{
		router: router,
		store:  store,
		user:   user,
		cookie: &http.Cookie{Name: "session_token", Value: token},
	}
}

func (f *fixture) do(method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body) //nolint:errcheck // test input
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if authenticated {
		req.AddCookie(f.cookie)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodGet, "/api/profile", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.user.ID, resp.User.ID)
	assert.Equal(t, "Ada", resp.User.Name)

	w = f.do(http.MethodGet, "/api/profile", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPatch, "/api/profile", gin.H{
		"title":    "  Analyst ",
		"location": "London",
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Analyst", resp.User.Title)
	assert.Equal(t, "London", resp.User.Location)
	assert.Equal(t, "Ada", resp.User.Name, "omitted fields are unchanged")

	stored, err := f.store.FindByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Analyst", stored.Title)
}

func TestUpdateProfile_Validation(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name  string
		body  gin.H
		field string
	}{
		{"short name", gin.H{"name": " A "}, "name"},
		{"long bio", gin.H{"bio": strings.Repeat("b", 1001)}, "bio"},
		{"bad photo url", gin.H{"photo_url": "javascript:alert(1)"}, "photo_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPatch, "/api/profile", tt.body, true)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"`+tt.field+`"`)
		})
	}
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPatch, "/api/profile", gin.H{"title": "x"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvatarUpload(t *testing.T) {
	f := newFixture(t, fakePresigner{})

	w := f.do(http.MethodPost, "/api/profile/avatar", gin.H{"content_type": "image/png"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AvatarUploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.UploadURL, f.user.ID)
	assert.Contains(t, resp.PhotoURL, f.user.ID)
	assert.False(t, resp.ExpiresAt.IsZero())

	w = f.do(http.MethodPost, "/api/profile/avatar", gin.H{"content_type": "text/html"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/profile/avatar", gin.H{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvatarUpload_NotConfigured(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(http.MethodPost, "/api/profile/avatar", gin.H{"content_type": "image/png"}, true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
