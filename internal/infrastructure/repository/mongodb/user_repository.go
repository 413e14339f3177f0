package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

const userResource = "user"

// UserRecord is what the directory knows about a user.
type UserRecord struct {
	ID          uuid.UUID
	DisplayName string
	// V2Capable users run a client that supports v2 groups.
	V2Capable bool
	// HasCredential users can be added without an invitation.
	HasCredential bool
}

// Eligibility derives how the user can enter a v2 group.
func (u UserRecord) Eligibility() group.Eligibility {
	switch {
	case !u.V2Capable:
		return group.NotEligible
	case !u.HasCredential:
		return group.EligibleToInvite
	default:
		return group.EligibleToJoin
	}
}

// MongoUserRepository resolves user names and group eligibility.
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserRepoOption configures MongoUserRepository.
type UserRepoOption func(*MongoUserRepository)

// WithUserRepoLogger sets the logger for user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MongoUserRepository) {
		r.logger = logger
	}
}

// NewMongoUserRepository creates a new MongoDB user repository.
func NewMongoUserRepository(collection *mongo.Collection, opts ...UserRepoOption) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Save upserts a user record.
func (r *MongoUserRepository) Save(ctx context.Context, user UserRecord) error {
	if user.ID.IsZero() {
		return errs.ErrInvalidInput
	}

	doc := userDocument{
		UserID:        user.ID.String(),
		DisplayName:   user.DisplayName,
		V2Capable:     user.V2Capable,
		HasCredential: user.HasCredential,
		UpdatedAt:     time.Now().UTC(),
	}
	filter := bson.M{"user_id": doc.UserID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": doc}, upsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save user",
			slog.String("user_id", doc.UserID),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, userResource, errs.ErrNotFound)
}

// Resolve returns the known users among ids. Unknown ids are omitted.
func (r *MongoUserRepository) Resolve(ctx context.Context, ids []uuid.UUID) ([]migration.Recipient, error) {
	docs, err := r.findMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]migration.Recipient, 0, len(docs))
	for _, doc := range docs {
		out = append(out, migration.Recipient{ID: uuid.UUID(doc.UserID), DisplayName: doc.DisplayName})
	}
	return out, nil
}

// Eligibility reports the eligibility of each id. Unknown users are not eligible.
func (r *MongoUserRepository) Eligibility(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]group.Eligibility, error) {
	docs, err := r.findMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]group.Eligibility, len(ids))
	for _, id := range ids {
		out[id] = group.NotEligible
	}
	for _, doc := range docs {
		out[uuid.UUID(doc.UserID)] = doc.record().Eligibility()
	}
	return out, nil
}

func (r *MongoUserRepository) findMany(ctx context.Context, ids []uuid.UUID) ([]userDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": uuid.Strings(ids)}})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to find users",
			slog.Int("count", len(ids)),
			slog.String("error", err.Error()),
		)
		return nil, HandleMongoError(err, userResource, errs.ErrNotFound)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, HandleMongoError(err, userResource, errs.ErrNotFound)
	}
	return docs, nil
}

// userDocument is the MongoDB representation of a user.
type userDocument struct {
	UserID        string    `bson:"user_id"`
	DisplayName   string    `bson:"display_name"`
	V2Capable     bool      `bson:"v2_capable"`
	HasCredential bool      `bson:"has_credential"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (d userDocument) record() UserRecord {
	return UserRecord{
		ID:            uuid.UUID(d.UserID),
		DisplayName:   d.DisplayName,
		V2Capable:     d.V2Capable,
		HasCredential: d.HasCredential,
	}
}

var _ migration.RecipientDirectory = (*MongoUserRepository)(nil)
