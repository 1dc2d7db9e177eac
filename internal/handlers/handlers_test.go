package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workshop-backend/internal/auth"
	"workshop-backend/internal/config"
	"workshop-backend/internal/middleware"
	"workshop-backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newServer(t *testing.T) *Server {
	t.Helper()
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	return &Server{
		Cfg: &config.Config{AdminUser: "admin"},
		Val: validation.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Auth: &auth.Manager{
			Secret:     []byte("test-secret"),
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
			Issuer:     "workshop-backend",
		},
		PasswordHash: hash,
	}
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminLoginSetsCookies(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"s3cret-pass"}`))
	rec := httptest.NewRecorder()
	s.AdminLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieByName(rec, middleware.AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	claims, err := s.Auth.Parse(access.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.NotNil(t, cookieByName(rec, RefreshCookie))
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	s := newServer(t)
	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"root","password":"s3cret-pass"}`,
	} {
		rec := httptest.NewRecorder()
		s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, cookieByName(rec, middleware.AccessCookie))
	}

	rec := httptest.NewRecorder()
	s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminLoginUnusableHash(t *testing.T) {
	s := newServer(t)
	s.PasswordHash = "s3cret-pass"
	rec := httptest.NewRecorder()
	s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieByName(rec, middleware.AccessCookie))
}

func TestAdminLoginNotConfigured(t *testing.T) {
	s := newServer(t)
	s.Auth = nil
	rec := httptest.NewRecorder()
	s.AdminLogin(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"admin","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminRefresh(t *testing.T) {
	s := newServer(t)
	refresh, err := s.Auth.NewRefreshToken("admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
	rec := httptest.NewRecorder()
	s.AdminRefresh(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, cookieByName(rec, middleware.AccessCookie))

	access, err := s.Auth.NewAccessToken("admin", "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/admin/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: access})
	rec = httptest.NewRecorder()
	s.AdminRefresh(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminLogoutClearsCookies(t *testing.T) {
	s := newServer(t)
	rec := httptest.NewRecorder()
	s.AdminLogout(rec, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	access := cookieByName(rec, middleware.AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, "", access.Value)
	assert.True(t, access.MaxAge < 0)
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	s.DB = stubPinger{}
	rec := httptest.NewRecorder()
	s.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["database"])

	s.DB = stubPinger{err: errors.New("no primary")}
	rec = httptest.NewRecorder()
	s.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "no primary")
}
