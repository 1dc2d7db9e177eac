package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"workshop-backend/internal/transport"
)

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		transport.WriteSuccess(w, http.StatusOK, "ok", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.DB.Ping(ctx); err != nil {
		s.logWithRequest(r).Error("health check: database unreachable", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusServiceUnavailable, "Database unavailable", nil)
		return
	}
	transport.WriteSuccess(w, http.StatusOK, "ok", map[string]interface{}{"database": "up"})
}
