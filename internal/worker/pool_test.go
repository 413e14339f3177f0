package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/worker"
)

func startPool(t *testing.T, config worker.PoolConfig) (*worker.Pool, context.CancelFunc, <-chan error) {
	t.Helper()
	pool := worker.NewPool(config, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pool.Run(ctx) }()
	t.Cleanup(cancel)
	return pool, cancel, errCh
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool, _, _ := startPool(t, worker.PoolConfig{Workers: 3, QueueSize: 10})

	var wg sync.WaitGroup
	var count atomic.Int32
	for range 20 {
		wg.Add(1)
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(20), count.Load())
}

func TestPool_SubmitAfterClose(t *testing.T) {
	pool, _, errCh := startPool(t, worker.DefaultPoolConfig())
	pool.Close()

	err := pool.Submit(context.Background(), func(context.Context) {})
	require.ErrorIs(t, err, worker.ErrPoolClosed)

	select {
	case runErr := <-errCh:
		require.NoError(t, runErr)
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not stop")
	}
}

func TestPool_DrainsQueuedJobsOnCancel(t *testing.T) {
	pool, cancel, errCh := startPool(t, worker.PoolConfig{Workers: 1, QueueSize: 5})

	release := make(chan struct{})
	var done atomic.Int32
	for range 4 {
		require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
			<-release
			if ctx.Err() == nil {
				done.Add(1)
			}
		}))
	}

	cancel()
	close(release)

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not stop")
	}
	assert.Equal(t, int32(4), done.Load())
}

func TestPool_SubmitRespectsContext(t *testing.T) {
	pool := worker.NewPool(worker.PoolConfig{Workers: 1, QueueSize: 1}, nil)
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) {}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func(context.Context) {})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	pool.Close()
}

func TestPool_RecoversPanics(t *testing.T) {
	pool, _, _ := startPool(t, worker.PoolConfig{Workers: 1, QueueSize: 2})

	require.NoError(t, pool.Submit(context.Background(), func(context.Context) { panic("boom") }))

	ran := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func(context.Context) { close(ran) }))

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive panic")
	}
}

func TestPool_JobTimeout(t *testing.T) {
	pool, _, _ := startPool(t, worker.PoolConfig{Workers: 1, QueueSize: 1, JobTimeout: 10 * time.Millisecond})

	result := make(chan error, 1)
	require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
		<-ctx.Done()
		result <- ctx.Err()
	}))

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("job was not cancelled")
	}
}
