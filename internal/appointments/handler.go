package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"workshop-backend/internal/apperr"
	"workshop-backend/internal/cache"
	"workshop-backend/internal/httpx"
	"workshop-backend/internal/metrics"
	"workshop-backend/internal/middleware"
	"workshop-backend/internal/transport"

	"github.com/go-chi/chi/v5"
)

const keyStats = cache.PrefixAppointments + "stats"

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
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Appointments []Entry `json:"appointments"`
	Count        int     `json:"count"`
	Degraded     int     `json:"degraded"`
}

type statsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stats
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req BookRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("appointments book: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON input", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	entry, err := h.service.Book(ctx, req)
	if err != nil {
		h.fail(w, log, "book", err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("appointments book: created",
		slog.String("appointment_id", entry.ID),
		slog.String("mechanic_id", entry.MechanicID),
		slog.Int64("seq", entry.Seq),
	)
	transport.WriteSuccess(w, http.StatusCreated, "Appointment booked successfully", map[string]interface{}{
		"appointment": entry,
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req StatusRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("appointments status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "Invalid JSON input", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	change, err := h.service.UpdateStatus(ctx, req)
	if err != nil {
		h.fail(w, log.With(slog.String("appointment_id", req.AppointmentID)), "status", err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("appointments status: updated",
		slog.String("appointment_id", change.ID),
		slog.String("from", change.PreviousStatus),
		slog.String("to", change.Status),
	)
	message := fmt.Sprintf("Appointment status updated from '%s' to '%s' successfully", change.PreviousStatus, change.Status)
	transport.WriteSuccess(w, http.StatusOK, message, map[string]interface{}{
		"appointment": change,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	filter := ParseListFilter(r.URL.Query())
	key := cache.PrefixAppointmentList + filter.CacheKey()

	if cached, ok, err := h.cache.Get(r.Context(), key); err == nil && ok {
		log.Info("appointments list: cache hit")
		writeRaw(w, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.fail(w, log, "list", err)
		return
	}

	response := listResponse{
		Success:      true,
		Message:      "Appointments loaded successfully",
		Appointments: result.Entries,
		Count:        len(result.Entries),
		Degraded:     result.Degraded,
	}
	if payload, err := json.Marshal(response); err == nil {
		_ = h.cache.Set(r.Context(), key, payload, h.cacheTTL)
	}

	if result.Degraded > 0 {
		log.Warn("appointments list: degraded entries", slog.Int("degraded", result.Degraded))
	}
	log.Info("appointments list: ok", slog.Int("count", response.Count))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	entry, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(w, log.With(slog.String("appointment_id", id)), "get", err)
		return
	}
	transport.WriteSuccess(w, http.StatusOK, "Appointment loaded successfully", map[string]interface{}{
		"appointment": entry,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, log.With(slog.String("appointment_id", id)), "delete", err)
		return
	}
	h.invalidate(r.Context(), log)

	log.Info("appointments delete: ok", slog.String("appointment_id", id))
	transport.WriteSuccess(w, http.StatusOK, "Appointment deleted successfully", nil)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	if cached, ok, err := h.cache.Get(r.Context(), keyStats); err == nil && ok {
		writeRaw(w, cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.fail(w, log, "stats", err)
		return
	}

	response := statsResponse{Success: true, Message: "Statistics loaded successfully", Stats: stats}
	if payload, err := json.Marshal(response); err == nil {
		_ = h.cache.Set(r.Context(), keyStats, payload, h.cacheTTL)
	}
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	kind := apperr.KindOf(err)
	metrics.OperationErrorsTotal.WithLabelValues("appointments_"+op, string(kind)).Inc()
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidID, apperr.KindNotFound, apperr.KindNoOp:
		log.Warn("appointments "+op+": rejected", slog.String("kind", string(kind)), slog.String("error", err.Error()))
	default:
		log.Error("appointments "+op+": failed", slog.String("kind", string(kind)), slog.String("error", err.Error()))
	}
	transport.WriteAppError(w, err)
}

// invalidate drops cached listings and stats after a write. Cache errors
// only cost freshness until the TTL expires.
func (h *Handler) invalidate(ctx context.Context, log *slog.Logger) {
	if err := h.cache.DeletePrefix(ctx, cache.PrefixAppointments); err != nil {
		log.Warn("appointments cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func writeRaw(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
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
