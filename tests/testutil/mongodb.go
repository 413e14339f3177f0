package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoDB test configuration constants
const (
	mongoCtxTimeout              = 10 * time.Second
	mongoContainerStartupTimeout = 60 * time.Second
	mongoPingTimeout             = 2 * time.Second
	mongoPingRetryDelay          = 500 * time.Millisecond
	mongoPingRetries             = 5
	maxTestDBNameLength          = 40
)

var (
	sharedMongo     *sharedMongoContainer
	sharedMongoOnce sync.Once
	errSharedMongo  error
)

type sharedMongoContainer struct {
	container testcontainers.Container
	uri       string
}

func getSharedMongoContainer(ctx context.Context) (*sharedMongoContainer, error) {
	sharedMongoOnce.Do(func() {
		sharedMongo, errSharedMongo = startMongoContainer(ctx)
	})
	return sharedMongo, errSharedMongo
}

func startMongoContainer(ctx context.Context) (*sharedMongoContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "mongo:8",
		ExposedPorts: []string{"27017/tcp"},
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": "admin",
			"MONGO_INITDB_ROOT_PASSWORD": "admin123",
		},
		WaitingFor: wait.ForLog("Waiting for connections").WithStartupTimeout(mongoContainerStartupTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &sharedMongoContainer{
		container: container,
		uri:       fmt.Sprintf("mongodb://admin:admin123@%s", net.JoinHostPort(host, port.Port())),
	}, nil
}

// SetupTestMongoDB returns an isolated database in a shared MongoDB container.
// The test is skipped when no container runtime is available.
func SetupTestMongoDB(t *testing.T) *mongo.Database {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), mongoContainerStartupTimeout)
	defer cancel()

	container, err := getSharedMongoContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to get shared MongoDB container: %v", err)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(container.uri))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	for i := range mongoPingRetries {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), mongoPingTimeout)
		err = client.Ping(pingCtx, nil)
		pingCancel()
		if err == nil {
			break
		}
		if i < mongoPingRetries-1 {
			time.Sleep(mongoPingRetryDelay)
		}
	}
	if err != nil {
		t.Fatalf("Failed to ping MongoDB after %d retries: %v", mongoPingRetries, err)
	}

	db := client.Database(testDBName(t.Name()))

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), mongoCtxTimeout)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return db
}

// testDBName derives a valid database name from the test name.
func testDBName(testName string) string {
	name := strings.NewReplacer("/", "_", " ", "_", ".", "_").Replace(testName)
	if len(name) > maxTestDBNameLength {
		hash := sha256.Sum256([]byte(testName))
		name = name[:maxTestDBNameLength-9] + "_" + hex.EncodeToString(hash[:4])
	}
	return "regroup_test_" + name
}
