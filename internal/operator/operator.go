package operator

import (
	"context"
	"fmt"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// IAction is one unit of work. Perform runs inside a single storage transaction that is
// committed when it returns nil and rolled back otherwise.
type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}

// ActionFunc adapts a function to IAction.
type ActionFunc func(ctx context.Context, writer *storage.Writer) error

func (f ActionFunc) Perform(ctx context.Context, writer *storage.Writer) error {
	return f(ctx, writer)
}

// Operator is the worker that processes items from the queue.
type Operator struct {
	storage storage.Storage
	queue   chan ActionItem
}

func NewOperator(s storage.Storage, queue chan ActionItem) *Operator {
	return &Operator{
		storage: s,
		queue:   queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		item.response <- ActionItemResponse{err: Execute(item.ctx, o.storage, item.action)}
	}
}

// Execute runs action in its own unit of work on the calling goroutine. A panicking action is
// rolled back before the panic continues, so the store is never left with an open writer.
func Execute(ctx context.Context, s storage.Storage, action IAction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	writer, err := s.Write(ctx)
	if err != nil {
		return err
	}

	finished := false
	defer func() {
		if !finished {
			_ = writer.Rollback()
		}
	}()

	err = action.Perform(ctx, writer)
	if err != nil {
		finished = true
		_ = writer.Rollback()
		return err
	}

	finished = true
	if err = writer.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type ActionItem struct {
	ctx      context.Context
	action   IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
