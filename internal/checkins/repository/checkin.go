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
	CollectionName = "CheckIns"
)

type mongoCheckInRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type CheckInRepository interface {
	Create(ctx context.Context, c *model.CheckIn) error
	FindByParticipantAndSession(ctx context.Context, participantID, sessionID string) (*model.CheckIn, error)
	FindBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.CheckIn, error)
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}

func NewMongoCheckInRepository(cfg *config.Config) CheckInRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCheckInRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoCheckInRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

// Create persists a check-in. The unique (participant_id, session_id) index
// backstops the admission controller's duplicate check; a violation maps to
// ErrDuplicate so callers can distinguish it from infrastructure failures.
func (r *mongoCheckInRepository) Create(ctx context.Context, c *model.CheckIn) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	c.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: participant %s, session %s", checkinerrors.ErrDuplicate, c.ParticipantID, c.SessionID)
		}
		return fmt.Errorf("failed to create check-in: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCheckInRepository) FindByParticipantAndSession(ctx context.Context, participantID, sessionID string) (*model.CheckIn, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"participant_id": participantID,
		"session_id":     sessionID,
	}

	var c model.CheckIn
	err := r.collection.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: participant %s, session %s", checkinerrors.ErrNotFound, participantID, sessionID)
		}
		return nil, fmt.Errorf("failed to find check-in: %w", err)
	}

	return &c, nil
}

func (r *mongoCheckInRepository) FindBySession(ctx context.Context, sessionID string, limit int, offset int) ([]*model.CheckIn, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "check_in_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer cursor.Close(ctx)

	var checkIns []*model.CheckIn
	if err = cursor.All(ctx, &checkIns); err != nil {
		return nil, fmt.Errorf("failed to decode check-ins: %w", err)
	}
	return checkIns, nil
}

func (r *mongoCheckInRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}
