package mongodb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/lllypuk/regroup/internal/infrastructure/mongodb"
	"github.com/lllypuk/regroup/tests/testutil"
)

func TestGetAllIndexDefinitions(t *testing.T) {
	names := make(map[string]bool)
	for _, idx := range mongodb.GetAllIndexDefinitions() {
		assert.NotEmpty(t, idx.Name)
		assert.NotEmpty(t, idx.Keys)
		assert.False(t, names[idx.Name], "duplicate index name %s", idx.Name)
		names[idx.Name] = true
	}
	assert.True(t, names["idx_groups_id_unique"])
	assert.True(t, names["idx_users_id_unique"])
}

func TestCreateAllIndexes(t *testing.T) {
	db := testutil.SetupTestMongoDB(t)
	ctx := context.Background()

	require.NoError(t, mongodb.CreateAllIndexes(ctx, db))
	// Second run must be a no-op.
	require.NoError(t, mongodb.CreateAllIndexes(ctx, db))

	for _, collName := range []string{mongodb.CollectionGroups, mongodb.CollectionUsers} {
		indexes := getCollectionIndexes(ctx, t, db, collName)
		assert.GreaterOrEqual(t, len(indexes), 2, "collection %s should have indexes", collName)
	}
}

func getCollectionIndexes(ctx context.Context, t *testing.T, db *mongo.Database, collName string) []bson.M {
	t.Helper()

	cursor, err := db.Collection(collName).Indexes().List(ctx)
	require.NoError(t, err)
	defer cursor.Close(ctx)

	var indexes []bson.M
	require.NoError(t, cursor.All(ctx, &indexes))
	return indexes
}
