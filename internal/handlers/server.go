package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"workshop-backend/internal/auth"
	"workshop-backend/internal/config"
	"workshop-backend/internal/middleware"
	"workshop-backend/internal/validation"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the operator session and health endpoints.
type Server struct {
	Cfg  *config.Config
	Val  *validation.Validator
	Log  *slog.Logger
	DB   Pinger
	Auth *auth.Manager
	// PasswordHash is the bcrypt hash operator logins are checked against.
	PasswordHash string
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
