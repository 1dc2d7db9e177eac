package appointments

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"workshop-backend/internal/apperr"
	"workshop-backend/internal/events"
	"workshop-backend/internal/models"
	"workshop-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type memRepo struct {
	mu   sync.Mutex
	seq  int64
	docs map[primitive.ObjectID]bson.M

	// undecodable is appended to List results as a decode failure.
	undecodable int
	listErr     error
	findErr     error
	updateErr   error
	// ignoreUpdate acknowledges an update without applying it.
	ignoreUpdate bool
	// lostWrite reports a modified write that is not visible on re-read.
	lostWrite bool
	updates   int
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[primitive.ObjectID]bson.M)}
}

func (r *memRepo) NextSeq(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *memRepo) Insert(ctx context.Context, item models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[item.ID] = bson.M{
		"_id":               item.ID,
		"seq":               item.Seq,
		"clientName":        item.ClientName,
		"clientPhone":       item.ClientPhone,
		"clientAddress":     item.ClientAddress,
		"carLicense":        item.CarLicense,
		"carEngine":         item.CarEngine,
		"appointmentDate":   primitive.NewDateTimeFromTime(item.AppointmentDate),
		"mechanicId":        item.MechanicID,
		"mechanicName":      item.MechanicName,
		"status":            item.Status,
		"estimatedDuration": int32(item.EstimatedDuration),
		"createdAt":         primitive.NewDateTimeFromTime(item.CreatedAt),
		"updatedAt":         primitive.NewDateTimeFromTime(item.UpdatedAt),
	}
	return nil
}

// put stores a raw document as an older writer might have left it.
func (r *memRepo) put(doc bson.M) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
	}
	r.docs[id] = doc
	return id
}

func (r *memRepo) FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	doc, ok := r.docs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	out := bson.M{}
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return 0, 0, r.updateErr
	}
	doc, ok := r.docs[id]
	if !ok {
		return 0, 0, nil
	}
	r.updates++
	if r.ignoreUpdate {
		return 1, 0, nil
	}
	if r.lostWrite {
		return 1, 1, nil
	}
	if doc["status"] == status {
		return 1, 0, nil
	}
	doc["status"] = status
	doc["updatedAt"] = primitive.NewDateTimeFromTime(at)
	return 1, 1, nil
}

func (r *memRepo) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

func (r *memRepo) List(ctx context.Context, filter ListFilter, limit int64) ([]RawDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}

	docs := make([]bson.M, 0, len(r.docs))
	for _, doc := range r.docs {
		if filter.Status != "" && doc["status"] != filter.Status {
			continue
		}
		if filter.MechanicID != "" && doc["mechanicId"] != filter.MechanicID {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		a, _ := docs[i]["seq"].(int64)
		b, _ := docs[j]["seq"].(int64)
		if a != b {
			return a > b
		}
		ai, _ := docs[i]["_id"].(primitive.ObjectID)
		bi, _ := docs[j]["_id"].(primitive.ObjectID)
		return ai.Hex() > bi.Hex()
	})

	out := make([]RawDocument, 0, len(docs)+r.undecodable)
	for _, doc := range docs {
		out = append(out, RawDocument{Doc: doc})
	}
	for i := 0; i < r.undecodable; i++ {
		out = append(out, RawDocument{Err: mongo.ErrNilDocument})
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, doc := range r.docs {
		status, _ := doc["status"].(string)
		counts[status]++
	}
	return counts, nil
}

type fakeMechanics struct {
	items []models.Mechanic
}

func newFakeMechanics() *fakeMechanics {
	var items []models.Mechanic
	for _, m := range models.DefaultMechanics(fixedNow) {
		m.ID = primitive.NewObjectID()
		items = append(items, m)
	}
	return &fakeMechanics{items: items}
}

func (f *fakeMechanics) Resolve(ctx context.Context, ident string) (models.Mechanic, error) {
	for _, m := range f.items {
		if m.ID.Hex() == ident {
			return m, nil
		}
	}
	for _, m := range f.items {
		if m.Name == ident {
			return m, nil
		}
	}
	return models.Mechanic{}, apperr.NotFound("Mechanic not found: %s", ident)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	repo      *memRepo
	mechanics *fakeMechanics
	events    *recordingPublisher
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newMemRepo(),
		mechanics: newFakeMechanics(),
		events:    &recordingPublisher{},
	}
	f.service = NewService(f.repo, f.mechanics, f.events, validation.New(),
		WithClock(func() time.Time { return fixedNow }))
	return f
}

func (f *fixture) validRequest() BookRequest {
	return BookRequest{
		ClientName:      "Ana Pop",
		ClientPhone:     "0722 000 111",
		ClientAddress:   "Str. Lunga 4",
		CarLicense:      "b-12-abc",
		CarEngine:       "vin123",
		AppointmentDate: "2024-05-10",
		MechanicID:      f.mechanics.items[0].ID.Hex(),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
