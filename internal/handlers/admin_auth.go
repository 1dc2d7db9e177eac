package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"workshop-backend/internal/auth"
	"workshop-backend/internal/httpx"
	"workshop-backend/internal/middleware"
	"workshop-backend/internal/models"
	"workshop-backend/internal/transport"
)

const (
	RefreshCookie = "workshop_refresh"
	refreshPath   = "/api"
)

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminLoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON input", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		details := httpx.ValidationDetails(s.Val.ValidationErrors(err))
		transport.WriteError(w, http.StatusBadRequest, "Username and password are required", details)
		return
	}

	if s.Auth == nil || s.PasswordHash == "" {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "Admin login is not configured", nil)
		return
	}

	if req.Username != s.Cfg.AdminUser {
		log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
		transport.WriteError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := auth.ComparePassword(s.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("admin login: stored hash unusable", slog.String("error", err.Error()))
		} else {
			log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
		}
		transport.WriteError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if !s.issueSession(w, log, req.Username) {
		return
	}
	log.Info("admin login: ok", slog.String("username", req.Username))
	transport.WriteSuccess(w, http.StatusOK, "Logged in", nil)
}

func (s *Server) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.Auth == nil {
		log.Warn("admin refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "Admin login is not configured", nil)
		return
	}

	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "Missing refresh token", nil)
		return
	}

	claims, err := s.Auth.ParseRefresh(cookie.Value)
	if err != nil || claims.Role != models.UserRoleAdmin {
		log.Warn("admin refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}

	if !s.issueSession(w, log, claims.Subject) {
		return
	}
	log.Info("admin refresh: ok", slog.String("username", claims.Subject))
	transport.WriteSuccess(w, http.StatusOK, "Session refreshed", nil)
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	clearAuthCookies(w, s.Cfg.CookieSecure)
	log.Info("admin logout: ok")
	transport.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}

func (s *Server) issueSession(w http.ResponseWriter, log *slog.Logger, subject string) bool {
	access, err := s.Auth.NewAccessToken(subject, models.UserRoleAdmin)
	if err != nil {
		log.Error("admin session: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Token error", nil)
		return false
	}
	refresh, err := s.Auth.NewRefreshToken(subject, models.UserRoleAdmin)
	if err != nil {
		log.Error("admin session: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Token error", nil)
		return false
	}
	setAuthCookies(w, access, refresh, s.Auth.AccessTTL, s.Auth.RefreshTTL, s.Cfg.CookieSecure)
	return true
}

func setAuthCookies(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTTL.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refresh,
		Path:     refreshPath,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(refreshTTL.Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	for _, c := range []struct{ name, path string }{
		{middleware.AccessCookie, "/"},
		{RefreshCookie, refreshPath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  expire,
			MaxAge:   -1,
		})
	}
}
