package migration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/regroup/internal/application/appcore"
	"github.com/lllypuk/regroup/internal/application/migration"
	"github.com/lllypuk/regroup/internal/domain/group"
)

// inlinePool runs jobs on a new goroutine, or rejects them with err.
type inlinePool struct {
	err error
}

func (p inlinePool) Submit(_ context.Context, job func(ctx context.Context)) error {
	if p.err != nil {
		return p.err
	}
	go job(context.Background())
	return nil
}

type useCaseFunc func(ctx context.Context, cmd migration.AddSuggestedMembersCommand) (migration.Result, error)

func (f useCaseFunc) Execute(ctx context.Context, cmd migration.AddSuggestedMembersCommand) (migration.Result, error) {
	return f(ctx, cmd)
}

func waitCompletion(t *testing.T, ch <-chan migration.Completion) migration.Completion {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "completion channel closed without a value")
		select {
		case _, open := <-ch:
			require.False(t, open, "completion channel delivered more than one value")
		case <-time.After(time.Second):
			t.Fatal("completion channel was not closed")
		}
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
		return migration.Completion{}
	}
}

func TestDispatcher_DeliversResultOnce(t *testing.T) {
	f := newFixture(t)
	f.membership.Returns(group.AddResult{}, group.ErrChangeBusy)
	d := migration.NewDispatcher(inlinePool{}, f.addMembers, nil)

	c := waitCompletion(t, d.Dispatch(context.Background(), f.command(f.pending...)))
	require.NoError(t, c.Err)
	assert.Equal(t, group.RetryableError, c.Result.Classification.Category)
	assert.False(t, c.Result.Classification.ShouldPurgePendingRecords)
}

func TestDispatcher_DeliversUseCaseError(t *testing.T) {
	f := newFixture(t)
	d := migration.NewDispatcher(inlinePool{}, f.addMembers, nil)

	c := waitCompletion(t, d.Dispatch(context.Background(), migration.AddSuggestedMembersCommand{}))
	require.ErrorIs(t, c.Err, appcore.ErrValidationFailed)
}

func TestDispatcher_ClosedPool(t *testing.T) {
	d := migration.NewDispatcher(inlinePool{err: errors.New("pool closed")}, useCaseFunc(
		func(context.Context, migration.AddSuggestedMembersCommand) (migration.Result, error) {
			t.Fatal("use case must not run")
			return migration.Result{}, nil
		}), nil)

	c := waitCompletion(t, d.Dispatch(context.Background(), migration.AddSuggestedMembersCommand{}))
	require.ErrorIs(t, c.Err, migration.ErrDispatcherClosed)
}

func TestDispatcher_CancelledBeforeSubmit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := migration.NewDispatcher(inlinePool{err: context.Canceled}, useCaseFunc(
		func(context.Context, migration.AddSuggestedMembersCommand) (migration.Result, error) {
			return migration.Result{}, nil
		}), nil)

	c := waitCompletion(t, d.Dispatch(ctx, migration.AddSuggestedMembersCommand{}))
	require.ErrorIs(t, c.Err, context.Canceled)
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	d := migration.NewDispatcher(inlinePool{}, useCaseFunc(
		func(context.Context, migration.AddSuggestedMembersCommand) (migration.Result, error) {
			panic("boom")
		}), nil)

	c := waitCompletion(t, d.Dispatch(context.Background(), migration.AddSuggestedMembersCommand{}))
	require.Error(t, c.Err)
	assert.Contains(t, c.Err.Error(), "boom")
}

func TestDispatcher_PropagatesCorrelationID(t *testing.T) {
	seen := make(chan string, 1)
	d := migration.NewDispatcher(inlinePool{}, useCaseFunc(
		func(ctx context.Context, _ migration.AddSuggestedMembersCommand) (migration.Result, error) {
			seen <- appcore.GetCorrelationID(ctx)
			return migration.Result{}, nil
		}), nil)

	ctx := appcore.WithCorrelationID(context.Background(), "req-7")
	waitCompletion(t, d.Dispatch(ctx, migration.AddSuggestedMembersCommand{}))
	assert.Equal(t, "req-7", <-seen)
}
