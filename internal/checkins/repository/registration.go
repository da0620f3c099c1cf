package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	checkinerrors "checkinapp/internal/checkins/errors"
	"checkinapp/pkg/config"
	"checkinapp/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RegistrationCollectionName = "Registrations"
)

var ErrRegistrationNotFound = errors.New("registration not found")

type mongoRegistrationRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	FindConfirmed(ctx context.Context, participantID, sessionID string) (*model.Registration, error)
	FindBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.Registration, error)
	UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error
}

func NewMongoRegistrationRepository(cfg *config.Config) RegistrationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRegistrationRepository{
		cfg:        cfg,
		collection: db.Collection(RegistrationCollectionName),
	}
}

func (r *mongoRegistrationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reg.CreatedAt = now
	reg.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, reg)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reg.ID = oid.Hex()
	}
	return nil
}

// FindConfirmed returns the participant's confirmed registration for the
// session, or ErrRegistrationNotFound. Pending and cancelled registrations
// do not admit.
func (r *mongoRegistrationRepository) FindConfirmed(ctx context.Context, participantID, sessionID string) (*model.Registration, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"participant_id": participantID,
		"session_id":     sessionID,
		"status":         model.RegistrationConfirmed,
	}

	var reg model.Registration
	err := r.collection.FindOne(ctx, filter).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: participant %s, session %s", ErrRegistrationNotFound, participantID, sessionID)
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}

	return &reg, nil
}

func (r *mongoRegistrationRepository) FindBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.Registration, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer cursor.Close(ctx)

	var registrations []*model.Registration
	if err = cursor.All(ctx, &registrations); err != nil {
		return nil, fmt.Errorf("failed to decode registrations: %w", err)
	}
	return registrations, nil
}

func (r *mongoRegistrationRepository) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", checkinerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrRegistrationNotFound, id)
	}
	return nil
}
