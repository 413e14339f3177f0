// Package worker runs background jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Default pool configuration values.
const (
	defaultPoolWorkers    = 4
	defaultPoolQueueSize  = 64
	defaultPoolJobTimeout = 30 * time.Second
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// PoolConfig contains configuration for the pool.
type PoolConfig struct {
	// Workers is the number of goroutines running jobs.
	Workers int

	// QueueSize is the number of jobs that can wait for a worker.
	QueueSize int

	// JobTimeout bounds the run time of a single job.
	JobTimeout time.Duration
}

// DefaultPoolConfig returns sensible default configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:    defaultPoolWorkers,
		QueueSize:  defaultPoolQueueSize,
		JobTimeout: defaultPoolJobTimeout,
	}
}

// Pool runs submitted jobs. Jobs accepted before Close are always run, even
// when Run's context is cancelled.
type Pool struct {
	config PoolConfig
	logger *slog.Logger

	jobs      chan func(ctx context.Context)
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewPool creates a pool. Zero config values fall back to defaults.
func NewPool(config PoolConfig, logger *slog.Logger) *Pool {
	defaults := DefaultPoolConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pool{
		config: config,
		logger: logger,
		jobs:   make(chan func(ctx context.Context), config.QueueSize),
		done:   make(chan struct{}),
	}
}

// Submit queues job. It blocks while the queue is full, until ctx ends or the pool closes.
func (p *Pool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrPoolClosed
	}
}

// Run starts the workers and blocks until the pool is closed and drained.
// Cancelling ctx closes the pool.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "starting worker pool",
		slog.Int("workers", p.config.Workers),
		slog.Int("queue_size", p.config.QueueSize),
		slog.Duration("job_timeout", p.config.JobTimeout),
	)

	// Jobs outlive ctx so that every accepted job completes.
	jobCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	for i := range p.config.Workers {
		g.Go(func() error {
			for job := range p.jobs {
				p.runJob(jobCtx, i, job)
			}
			return nil
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.done:
		}
	}()

	err := g.Wait()
	p.logger.InfoContext(jobCtx, "worker pool stopped")
	return err
}

// Close stops accepting jobs. Queued jobs still run.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
}

func (p *Pool) runJob(ctx context.Context, worker int, job func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "job panicked",
				slog.Int("worker", worker),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	job(ctx)
}
