package testutil

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Redis test configuration constants
const (
	redisCtxTimeout              = 10 * time.Second
	redisContainerStartupTimeout = 60 * time.Second
	redisContainerMemoryLimit    = 128 * 1024 * 1024 // 128MB
	redisTestPoolSize            = 10
)

var (
	sharedRedisAddr string
	sharedRedisOnce sync.Once
	errSharedRedis  error
)

func startRedisContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Memory = redisContainerMemoryLimit
			hc.MemorySwap = redisContainerMemoryLimit
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(redisContainerStartupTimeout),
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(redisContainerStartupTimeout),
		),
	}

	cont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start Redis container: %w", err)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := cont.MappedPort(ctx, "6379")
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}

	return net.JoinHostPort(host, port.Port()), nil
}

// SetupTestRedis creates a Redis client backed by a shared container.
// The test is skipped when no container runtime is available.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	sharedRedisOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), redisContainerStartupTimeout)
		defer cancel()
		sharedRedisAddr, errSharedRedis = startRedisContainer(ctx)
	})
	if errSharedRedis != nil {
		t.Fatalf("Failed to get shared Redis container: %v", errSharedRedis)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     sharedRedisAddr,
		PoolSize: redisTestPoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisCtxTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to ping Redis: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), redisCtxTimeout)
		defer cleanupCancel()
		_ = client.FlushDB(cleanupCtx).Err()
		_ = client.Close()
	})

	return client
}
