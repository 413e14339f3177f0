package appcore

import "context"

// UseCase is the shape shared by every command and query handler.
type UseCase[TCommand any, TResult any] interface {
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}

// Command marks commands (state changes)
type Command interface {
	CommandName() string
}

// Query marks queries (read only)
type Query interface {
	QueryName() string
}
