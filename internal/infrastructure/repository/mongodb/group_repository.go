package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/errs"
	"github.com/lllypuk/regroup/internal/domain/group"
	"github.com/lllypuk/regroup/internal/domain/uuid"
)

const groupResource = "group"

// MongoGroupRepository stores group aggregates and their pending records.
type MongoGroupRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// GroupRepoOption configures MongoGroupRepository.
type GroupRepoOption func(*MongoGroupRepository)

// WithGroupRepoLogger sets the logger for the group repository.
func WithGroupRepoLogger(logger *slog.Logger) GroupRepoOption {
	return func(r *MongoGroupRepository) {
		r.logger = logger
	}
}

// NewMongoGroupRepository creates a new MongoDB group repository.
func NewMongoGroupRepository(collection *mongo.Collection, opts ...GroupRepoOption) *MongoGroupRepository {
	r := &MongoGroupRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Load finds a group by ID.
func (r *MongoGroupRepository) Load(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	doc, err := r.find(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return documentToGroup(doc), nil
}

// Save stores g when the stored version equals expectedVersion.
// expectedVersion 0 creates the group.
func (r *MongoGroupRepository) Save(ctx context.Context, g *group.Group, expectedVersion int) error {
	if g == nil || g.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := groupToDocument(g)
	doc.UpdatedAt = time.Now().UTC()

	filter := bson.M{"group_id": doc.GroupID, "version": expectedVersion}
	opts := options.UpdateOne().SetUpsert(expectedVersion == 0)
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save group",
			slog.String("group_id", doc.GroupID),
			slog.Int("expected_version", expectedVersion),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, groupResource, group.ErrGroupNotFound)
	}

	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		if _, findErr := r.find(ctx, g.ID(), nil); findErr != nil {
			return findErr
		}
		return errs.ErrConcurrentModification
	}
	return nil
}

// IsMember reports whether userID is a full member of the group.
func (r *MongoGroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	doc, err := r.find(ctx, groupID, bson.M{"members": 1})
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(doc.Members, func(m memberDocument) bool {
		return m.UserID == userID.String()
	}), nil
}

// UnmigratedMembers returns the members dropped when the group was migrated.
func (r *MongoGroupRepository) UnmigratedMembers(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	doc, err := r.find(ctx, groupID, bson.M{"unmigrated": 1})
	if err != nil {
		return nil, err
	}
	return parseIDs(doc.Unmigrated), nil
}

// RemoveUnmigrated atomically drops ids from the pending records and returns those that were present.
func (r *MongoGroupRepository) RemoveUnmigrated(ctx context.Context, groupID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if groupID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values := uuid.Strings(ids)
	filter := bson.M{"group_id": groupID.String(), "unmigrated": bson.M{"$in": values}}
	update := bson.M{
		"$pull": bson.M{"unmigrated": bson.M{"$in": values}},
		"$inc":  bson.M{"version": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"unmigrated": 1})

	var before groupDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Nothing matched: either the group is gone or none of ids were pending.
			if _, findErr := r.find(ctx, groupID, bson.M{"_id": 1}); findErr != nil {
				return nil, findErr
			}
			return nil, nil
		}
		r.logger.ErrorContext(ctx, "failed to remove unmigrated members",
			slog.String("group_id", groupID.String()),
			slog.String("error", err.Error()),
		)
		return nil, HandleMongoError(err, groupResource, group.ErrGroupNotFound)
	}

	var removed []uuid.UUID
	for _, v := range before.Unmigrated {
		if slices.Contains(values, v) {
			removed = append(removed, uuid.UUID(v))
		}
	}
	return removed, nil
}

func (r *MongoGroupRepository) find(ctx context.Context, id uuid.UUID, projection bson.M) (*groupDocument, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	var doc groupDocument
	err := r.collection.FindOne(ctx, bson.M{"group_id": id.String()}, opts).Decode(&doc)
	if err != nil {
		mapped := HandleMongoError(err, groupResource, group.ErrGroupNotFound)
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find group",
				slog.String("group_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, mapped
	}
	return &doc, nil
}

// groupDocument is the MongoDB representation of a group.
type groupDocument struct {
	GroupID        string           `bson:"group_id"`
	Title          string           `bson:"title"`
	Format         string           `bson:"format"`
	AddPolicy      string           `bson:"add_policy"`
	Members        []memberDocument `bson:"members"`
	PendingInvites []string         `bson:"pending_invites"`
	Unmigrated     []string         `bson:"unmigrated"`
	Version        int              `bson:"version"`
	CreatedAt      time.Time        `bson:"created_at"`
	UpdatedAt      time.Time        `bson:"updated_at"`
}

type memberDocument struct {
	UserID   string    `bson:"user_id"`
	Role     string    `bson:"role"`
	JoinedAt time.Time `bson:"joined_at"`
}

func groupToDocument(g *group.Group) groupDocument {
	s := g.Snapshot()
	members := make([]memberDocument, 0, len(s.Members))
	for _, m := range s.Members {
		members = append(members, memberDocument{
			UserID:   m.UserID().String(),
			Role:     string(m.Role()),
			JoinedAt: m.JoinedAt().UTC(),
		})
	}

	return groupDocument{
		GroupID:        s.ID.String(),
		Title:          s.Title,
		Format:         string(s.Format),
		AddPolicy:      string(s.AddPolicy),
		Members:        members,
		PendingInvites: uuid.Strings(s.PendingInvites),
		Unmigrated:     uuid.Strings(s.Unmigrated),
		Version:        s.Version,
		CreatedAt:      s.CreatedAt.UTC(),
	}
}

func documentToGroup(doc *groupDocument) *group.Group {
	members := make([]group.Member, 0, len(doc.Members))
	for _, m := range doc.Members {
		members = append(members, group.ReconstructMember(uuid.UUID(m.UserID), group.Role(m.Role), m.JoinedAt))
	}

	return group.Reconstruct(group.Snapshot{
		ID:             uuid.UUID(doc.GroupID),
		Title:          doc.Title,
		Format:         group.Format(doc.Format),
		AddPolicy:      group.AddPolicy(doc.AddPolicy),
		Members:        members,
		PendingInvites: parseIDs(doc.PendingInvites),
		Unmigrated:     parseIDs(doc.Unmigrated),
		Version:        doc.Version,
		CreatedAt:      doc.CreatedAt,
	})
}

var (
	_ migration.PendingStore = (*MongoGroupRepository)(nil)
	_ migration.GroupReader  = (*MongoGroupRepository)(nil)
)
