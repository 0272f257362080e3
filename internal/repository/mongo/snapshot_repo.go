package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/palestra-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultSnapshotCollection = "snapshots"

type snapshotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoSnapshotRepository implements repository.SnapshotRepository, one document per key.
type mongoSnapshotRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoSnapshotRepository creates the repository on db. An empty
// collection name selects DefaultSnapshotCollection.
func NewMongoSnapshotRepository(db *mongo.Database, collection string) repository.SnapshotRepository {
	if collection == "" {
		collection = DefaultSnapshotCollection
	}
	return &mongoSnapshotRepository{
		collection: db.Collection(collection),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetByKey retrieves a snapshot by its key.
func (r *mongoSnapshotRepository) GetByKey(ctx context.Context, key string) (*repository.SnapshotRecord, error) {
	var doc snapshotDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Nothing stored yet under this key
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &repository.SnapshotRecord{Key: doc.Key, Value: doc.Value, UpdatedAt: doc.UpdatedAt}, nil
}

// Upsert replaces the value stored under key, creating the document if needed.
func (r *mongoSnapshotRepository) Upsert(ctx context.Context, key, value string) error {
	// Upsert so the first write creates the document
	update := bson.M{"$set": bson.M{"value": value, "updatedAt": r.now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

// Delete removes the snapshot stored under key.
func (r *mongoSnapshotRepository) Delete(ctx context.Context, key string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound // Document didn't exist
	}
	return nil
}
