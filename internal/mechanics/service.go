package mechanics

import (
	"context"
	"errors"
	"strings"
	"time"

	"workshop-backend/internal/apperr"
	"workshop-backend/internal/httpx"
	"workshop-backend/internal/metrics"
	"workshop-backend/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns the directory sorted by name. An empty directory is filled
// with the default mechanics first; seeded reports how many were inserted.
func (s *Service) List(ctx context.Context) (items []View, seeded int, err error) {
	docs, err := s.repo.List(ctx, ListLimit)
	if err != nil {
		return nil, 0, apperr.Store(err)
	}

	if len(docs) == 0 {
		seeded, err = s.SeedDefaults(ctx)
		if err != nil {
			return nil, 0, err
		}
		docs, err = s.repo.List(ctx, ListLimit)
		if err != nil {
			return nil, seeded, apperr.Store(err)
		}
	}

	items = make([]View, 0, len(docs))
	for _, doc := range docs {
		items = append(items, FromDocument(doc))
	}
	return items, seeded, nil
}

// SeedDefaults stores each default mechanic whose name is not present yet.
// Concurrent callers insert every default at most once.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	inserted, err := s.repo.UpsertByName(ctx, models.DefaultMechanics(s.now()))
	if err != nil {
		return 0, apperr.Store(err)
	}
	metrics.MechanicsSeededTotal.Add(float64(inserted))
	return inserted, nil
}

// Resolve finds a mechanic by store id, falling back to an exact name match.
func (s *Service) Resolve(ctx context.Context, ident string) (models.Mechanic, error) {
	ident = strings.TrimSpace(ident)

	if id, ok := httpx.ParseObjectID(ident); ok {
		m, err := s.repo.FindByID(ctx, id)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return models.Mechanic{}, apperr.Store(err)
		}
	}

	m, err := s.repo.FindByName(ctx, ident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Mechanic{}, apperr.NotFound("Mechanic not found: %s", ident)
		}
		return models.Mechanic{}, apperr.Store(err)
	}
	return m, nil
}
