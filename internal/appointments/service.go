package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"workshop-backend/internal/apperr"
	"workshop-backend/internal/bsonx"
	"workshop-backend/internal/events"
	"workshop-backend/internal/httpx"
	"workshop-backend/internal/metrics"
	"workshop-backend/internal/models"
	"workshop-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const DefaultListLimit int64 = 100

type MechanicResolver interface {
	Resolve(ctx context.Context, ident string) (models.Mechanic, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type Service struct {
	repo      Repository
	mechanics MechanicResolver
	events    EventPublisher
	val       *validation.Validator
	limit     int64
	now       func() time.Time
}

type Option func(*Service)

func WithListLimit(limit int64) Option {
	return func(s *Service) {
		if limit > 0 && limit <= DefaultListLimit {
			s.limit = limit
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, mechanics MechanicResolver, publisher EventPublisher, val *validation.Validator, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		mechanics: mechanics,
		events:    publisher,
		val:       val,
		limit:     DefaultListLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book validates and stores a new appointment, then returns it as re-read
// from the store.
func (s *Service) Book(ctx context.Context, req BookRequest) (Entry, error) {
	req.trim()
	if err := s.val.Struct(req); err != nil {
		field, _, ok := s.val.FirstError(err)
		if !ok {
			return Entry{}, apperr.Validation("", "Invalid request")
		}
		return Entry{}, apperr.Validation(field, "Missing field: %s", field)
	}
	if err := s.val.Var(req.AppointmentDate, "date"); err != nil {
		return Entry{}, apperr.Validation("appointmentDate", "Invalid field: appointmentDate")
	}
	day, _ := time.Parse(validation.DateLayout, req.AppointmentDate)

	mechanic, err := s.mechanics.Resolve(ctx, req.MechanicID)
	if err != nil {
		return Entry{}, err
	}

	seq, err := s.repo.NextSeq(ctx)
	if err != nil {
		return Entry{}, apperr.Store(err)
	}

	now := s.now()
	item := models.Appointment{
		ID:                primitive.NewObjectID(),
		Seq:               seq,
		ClientName:        req.ClientName,
		ClientPhone:       req.ClientPhone,
		ClientAddress:     req.ClientAddress,
		CarLicense:        strings.ToUpper(req.CarLicense),
		CarEngine:         strings.ToUpper(req.CarEngine),
		AppointmentDate:   day.UTC(),
		MechanicID:        mechanic.ID.Hex(),
		MechanicName:      mechanic.Name,
		Status:            models.AppointmentStatusConfirmed,
		EstimatedDuration: models.DefaultEstimatedDuration,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return Entry{}, apperr.Store(err)
	}

	doc, err := s.repo.FindByID(ctx, item.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Entry{}, apperr.Inconsistency("Appointment was saved but could not be read back")
		}
		return Entry{}, apperr.Store(err)
	}
	entry := FromDocument(doc, 1)

	metrics.AppointmentsBookedTotal.Inc()
	s.publish(ctx, events.Event{
		Type:          events.TypeAppointmentBooked,
		AppointmentID: entry.ID,
		MechanicID:    item.MechanicID,
		Status:        entry.Status,
	})
	return entry, nil
}

// UpdateStatus moves an appointment to a new lifecycle status and confirms
// the write by reading the record back.
func (s *Service) UpdateStatus(ctx context.Context, req StatusRequest) (StatusChange, error) {
	rawID := strings.TrimSpace(req.AppointmentID)
	status := strings.TrimSpace(req.Status)
	if rawID == "" || status == "" {
		field := "appointmentId"
		if rawID != "" {
			field = "status"
		}
		return StatusChange{}, apperr.Validation(field, "appointmentId and status are required")
	}

	id, err := parseID(rawID)
	if err != nil {
		return StatusChange{}, err
	}
	if err := s.val.Var(status, "status"); err != nil {
		return StatusChange{}, apperr.Validation("status", "Status must be one of: %s",
			strings.Join(models.AppointmentStatuses, ", "))
	}

	before, err := s.find(ctx, id)
	if err != nil {
		return StatusChange{}, err
	}
	previous, _ := bsonx.String(before, "status")
	if previous == status {
		return StatusChange{}, apperr.NoOp("Appointment status is already: %s", status)
	}

	matched, modified, err := s.repo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return StatusChange{}, apperr.Store(err)
	}
	if matched == 0 {
		return StatusChange{}, apperr.NotFound("Appointment not found with ID: %s", rawID)
	}
	if modified == 0 {
		return StatusChange{}, apperr.NoOp("No changes made")
	}

	after, err := s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return StatusChange{}, apperr.Store(err)
	}
	if current, _ := bsonx.String(after, "status"); after == nil || current != status {
		return StatusChange{}, apperr.Inconsistency("Update operation completed but verification failed")
	}

	entry := FromDocument(after, 1)
	metrics.StatusChangesTotal.WithLabelValues(status).Inc()
	s.publish(ctx, events.Event{
		Type:           events.TypeAppointmentStatusChanged,
		AppointmentID:  entry.ID,
		MechanicID:     entry.MechanicID,
		Status:         status,
		PreviousStatus: previous,
	})
	return StatusChange{
		ID:             entry.ID,
		ClientName:     entry.ClientName,
		Status:         status,
		PreviousStatus: previous,
		UpdatedAt:      entry.UpdatedAt,
	}, nil
}

// List returns the filtered listing. Records that cannot be rebuilt cleanly
// are returned as degraded entries instead of failing the whole page.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	raws, err := s.repo.List(ctx, filter, s.limit)
	if err != nil {
		return ListResult{}, apperr.Store(err)
	}

	result := ListResult{Entries: make([]Entry, 0, len(raws))}
	for i, raw := range raws {
		var entry Entry
		if raw.Err != nil {
			entry = ErrorEntry(i + 1)
		} else {
			entry = FromDocument(raw.Doc, i+1)
		}
		if entry.Degraded {
			result.Degraded++
		}
		result.Entries = append(result.Entries, entry)
	}
	metrics.DegradedEntriesTotal.Add(float64(result.Degraded))
	return result, nil
}

func (s *Service) Get(ctx context.Context, rawID string) (Entry, error) {
	id, err := parseID(rawID)
	if err != nil {
		return Entry{}, err
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return FromDocument(doc, 1), nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Store(err)
	}
	if !deleted {
		return apperr.NotFound("Appointment not found with ID: %s", id.Hex())
	}

	metrics.AppointmentsDeletedTotal.Inc()
	s.publish(ctx, events.Event{Type: events.TypeAppointmentDeleted, AppointmentID: id.Hex()})
	return nil
}

// Stats counts appointments per status. Records without a status are
// counted as confirmed, matching how listings render them.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Stats{}, apperr.Store(err)
	}

	stats := Stats{ByStatus: make(map[string]int64, len(models.AppointmentStatuses))}
	for _, status := range models.AppointmentStatuses {
		stats.ByStatus[status] = 0
	}
	for status, n := range counts {
		if status == "" {
			status = models.AppointmentStatusConfirmed
		}
		stats.ByStatus[status] += n
		stats.Total += n
		if models.IsActiveStatus(status) {
			stats.Active += n
		}
	}
	return stats, nil
}

func (s *Service) find(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("Appointment not found with ID: %s", id.Hex())
		}
		return nil, apperr.Store(err)
	}
	return doc, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	event.OccurredAt = s.now()
	s.events.Publish(ctx, event)
}

func parseID(raw string) (primitive.ObjectID, error) {
	id, ok := httpx.ParseObjectID(raw)
	if !ok {
		return primitive.NilObjectID, apperr.InvalidID("Invalid appointment ID format: %s", strings.TrimSpace(raw))
	}
	return id, nil
}
