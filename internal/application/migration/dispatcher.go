package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lllypuk/regroup/internal/application/appcore"
)

// Submitter runs jobs in the background.
type Submitter interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

// Dispatcher runs add attempts asynchronously and reports each through a
// single-shot completion channel.
type Dispatcher struct {
	pool    Submitter
	useCase appcore.UseCase[AddSuggestedMembersCommand, Result]
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher backed by pool.
func NewDispatcher(
	pool Submitter,
	useCase appcore.UseCase[AddSuggestedMembersCommand, Result],
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{pool: pool, useCase: useCase, logger: logger}
}

// Dispatch submits cmd and returns a channel that receives exactly one
// Completion and is then closed. The attempt is not cancelled when ctx ends
// after submission; only the wait for a free worker is.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd AddSuggestedMembersCommand) <-chan Completion {
	done := make(chan Completion, 1)
	var once sync.Once
	complete := func(c Completion) {
		once.Do(func() {
			done <- c
			close(done)
		})
	}

	correlationID := appcore.GetCorrelationID(ctx)
	err := d.pool.Submit(ctx, func(jobCtx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				d.logger.ErrorContext(jobCtx, "add suggested members panicked",
					slog.String("group_id", cmd.GroupID.String()),
					slog.Any("panic", r),
				)
				complete(Completion{Err: fmt.Errorf("add suggested members panicked: %v", r)})
			}
		}()
		if correlationID != "" {
			jobCtx = appcore.WithCorrelationID(jobCtx, correlationID)
		}
		result, execErr := d.useCase.Execute(jobCtx, cmd)
		complete(Completion{Result: result, Err: execErr})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			complete(Completion{Err: ctxErr})
		} else {
			complete(Completion{Err: fmt.Errorf("%w: %w", ErrDispatcherClosed, err)})
		}
	}
	return done
}
