// internal/repository/mongo/plan_repo.go
package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"opentrainer/plan-service/internal/domain"
	"opentrainer/plan-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plan_records"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Mongo-backed plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Put upserts the record keyed by (userId, planId), stamping UpdatedAt
// (and CreatedAt when absent).
func (r *mongoPlanRepository) Put(ctx context.Context, record *domain.PlanRecord) error {
	if record.UserID == "" || record.PlanID == "" {
		return errors.New("plan record requires userId and planId")
	}
	now := time.Now().UTC()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	filter := bson.M{"userId": record.UserID, "planId": record.PlanID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, record, opts)
	return err
}

// GetByKey retrieves a single record by its composite key.
func (r *mongoPlanRepository) GetByKey(ctx context.Context, userID, planID string) (*domain.PlanRecord, error) {
	var record domain.PlanRecord
	filter := bson.M{"userId": userID, "planId": planID}
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// QueryByUserID retrieves all records for a user, newest first.
func (r *mongoPlanRepository) QueryByUserID(ctx context.Context, userID string) ([]domain.PlanRecord, error) {
	var records []domain.PlanRecord
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	// Return empty slice if no records found (not an error)
	return records, nil
}

// DeleteByKey removes a record; a missing key is not an error, matching the
// DynamoDB backend's semantics.
func (r *mongoPlanRepository) DeleteByKey(ctx context.Context, userID, planID string) error {
	filter := bson.M{"userId": userID, "planId": planID}
	_, err := r.collection.DeleteOne(ctx, filter)
	return err
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Composite key index: one record per (userId, planId) pair
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Partition scan sorted by creation time, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
