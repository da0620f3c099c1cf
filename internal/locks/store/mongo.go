package store

import (
	"context"
	"time"

	"checkinapp/pkg/config"
	"checkinapp/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Locks"

type mongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStore(cfg *config.Config) Store {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStore{
		client:     cfg.Client.Mongo,
		collection: db.Collection(CollectionName),
	}
}

// TrySet inserts the lock document; the unique _id makes the insert the
// atomic set-if-absent step. A duplicate key means a holder document exists:
// if its lease has already lapsed a single conditional update takes the lock
// over, otherwise this is contention, not failure. The TTL index on
// expires_at reaps abandoned documents server-side as a backstop.
func (s *mongoStore) TrySet(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()

	lock := model.SessionLock{
		Resource:  key,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := s.collection.InsertOne(ctx, lock)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, err
	}

	// A document is present. Take it over only if the previous lease has
	// lapsed; the expiry filter makes the takeover atomic, so a live
	// foreign holder can never be displaced.
	filter := bson.M{
		"_id":        key,
		"expires_at": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"token":      token,
			"expires_at": now.Add(ttl),
		},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// ConditionalDelete is an atomic compare-and-delete: the filter carries the
// token, so a stale or foreign owner cannot remove a lock it no longer holds.
func (s *mongoStore) ConditionalDelete(ctx context.Context, key, token string) (bool, error) {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": key, "token": token})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}
