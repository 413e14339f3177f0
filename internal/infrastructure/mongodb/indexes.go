// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionGroups = "groups"
	CollectionUsers  = "users"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Name       string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent - calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options.SetName(idx.Name),
		}

		if _, err := db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index %s on collection %s: %w", idx.Name, idx.Collection, err)
		}
	}

	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition

	indexes = append(indexes, GetGroupIndexes()...)
	indexes = append(indexes, GetUserIndexes()...)

	return indexes
}

// GetGroupIndexes returns index definitions for the groups collection.
func GetGroupIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Unique group ID; also turns a racing first save into a duplicate key error
			Collection: CollectionGroups,
			Name:       "idx_groups_id_unique",
			Keys:       bson.D{{Key: "group_id", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
		{
			Collection: CollectionGroups,
			Name:       "idx_groups_members",
			Keys:       bson.D{{Key: "members.user_id", Value: 1}},
			Options:    options.Index(),
		},
		{
			Collection: CollectionGroups,
			Name:       "idx_groups_unmigrated",
			Keys:       bson.D{{Key: "unmigrated", Value: 1}},
			Options:    options.Index(),
		},
	}
}

// GetUserIndexes returns index definitions for the users collection.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionUsers,
			Name:       "idx_users_id_unique",
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Options:    options.Index().SetUnique(true),
		},
	}
}
