package mechanics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"workshop-backend/internal/apperr"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/metrics"
	"workshop-backend/internal/middleware"
	"workshop-backend/internal/transport"
)

type Handler struct {
	service  *Service
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewHandler(service *Service, c cache.Cache, cacheTTL time.Duration, log *slog.Logger) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{
		service:  service,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

type listResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Mechanics []View `json:"mechanics"`
	Count     int    `json:"count"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	if cached, ok, err := h.cache.Get(r.Context(), cache.KeyMechanics); err == nil && ok {
		log.Info("mechanics list: cache hit")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, seeded, err := h.service.List(ctx)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("mechanics_list", string(apperr.KindOf(err))).Inc()
		log.Error("mechanics list: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	if seeded > 0 {
		log.Info("mechanics list: seeded default directory", slog.Int("inserted", seeded))
	}

	response := listResponse{
		Success:   true,
		Message:   "Mechanics loaded successfully",
		Mechanics: items,
		Count:     len(items),
	}
	if payload, err := json.Marshal(response); err == nil {
		_ = h.cache.Set(r.Context(), cache.KeyMechanics, payload, h.cacheTTL)
	}

	log.Info("mechanics list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
