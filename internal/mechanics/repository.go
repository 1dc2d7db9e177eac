package mechanics

import (
	"context"

	"workshop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	List(ctx context.Context, limit int64) ([]bson.M, error)
	// UpsertByName inserts the mechanics whose name is not stored yet and
	// reports how many were inserted.
	UpsertByName(ctx context.Context, items []models.Mechanic) (int, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Mechanic, error)
	FindByName(ctx context.Context, name string) (models.Mechanic, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// List returns up to limit documents sorted by name. A document that cannot
// be decoded is returned empty so it renders with fallback values.
func (r *MongoRepository) List(ctx context.Context, limit int64) ([]bson.M, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]bson.M, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			doc = bson.M{}
		}
		items = append(items, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertByName relies on the unique name index: a concurrent writer that
// loses the race gets a duplicate key error, which counts as already stored.
func (r *MongoRepository) UpsertByName(ctx context.Context, items []models.Mechanic) (int, error) {
	inserted := 0
	for _, m := range items {
		update := bson.M{
			"$setOnInsert": bson.M{
				"name":      m.Name,
				"email":     m.Email,
				"phone":     m.Phone,
				"specialty": m.Specialty,
				"available": m.Available,
				"createdAt": m.CreatedAt,
			},
		}
		res, err := r.col.UpdateOne(ctx, bson.M{"name": m.Name}, update, options.Update().SetUpsert(true))
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return inserted, err
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Mechanic, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByName(ctx context.Context, name string) (models.Mechanic, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

// findOne decodes loosely; a document without a usable _id counts as a
// miss so resolution falls through to the next lookup.
func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (models.Mechanic, error) {
	var doc bson.M
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.Mechanic{}, err
	}
	m, ok := MechanicFromDocument(doc)
	if !ok {
		return models.Mechanic{}, mongo.ErrNoDocuments
	}
	return m, nil
}
