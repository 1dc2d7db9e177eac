package appointments

import (
	"context"
	"time"

	"workshop-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const counterID = "appointments"

type Repository interface {
	NextSeq(ctx context.Context) (int64, error)
	Insert(ctx context.Context, item models.Appointment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (matched, modified int64, err error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context, filter ListFilter, limit int64) ([]RawDocument, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type MongoRepository struct {
	col      *mongo.Collection
	majority *mongo.Collection
	counters *mongo.Collection
}

func NewRepository(col, counters *mongo.Collection) *MongoRepository {
	majority := col.Database().Collection(col.Name(),
		options.Collection().SetWriteConcern(writeconcern.Majority()))
	return &MongoRepository{col: col, majority: majority, counters: counters}
}

// NextSeq increments the appointments counter and returns the new value.
func (r *MongoRepository) NextSeq(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterID},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}

func (r *MongoRepository) Insert(ctx context.Context, item models.Appointment) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var doc bson.M
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) (int64, int64, error) {
	res, err := r.majority.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": at}},
	)
	if err != nil {
		return 0, 0, err
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.majority.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// List returns up to limit documents, newest booking first. Documents that
// fail to decode are reported in place rather than aborting the cursor.
func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit int64) ([]RawDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.col.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]RawDocument, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			items = append(items, RawDocument{Err: err})
			continue
		}
		items = append(items, RawDocument{Doc: doc})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status interface{} `bson:"_id"`
			Count  int64       `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		status, _ := row.Status.(string)
		counts[status] += row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func buildQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if !filter.Date.IsZero() {
		query["appointmentDate"] = bson.M{
			"$gte": filter.Date,
			"$lt":  filter.Date.Add(24 * time.Hour),
		}
	}
	if filter.MechanicID != "" {
		query["mechanicId"] = filter.MechanicID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}
