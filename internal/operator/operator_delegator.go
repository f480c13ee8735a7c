package operator

import (
	"context"
	"sync"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// Processor runs an action as one unit of work.
type Processor interface {
	Process(ctx context.Context, action IAction) error
}

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	storage    storage.Storage
	queue      chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

var _ Processor = (*OperatorDelegator)(nil)

func NewOperatorDelegator(s storage.Storage, numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		storage:    s,
		queue:      make(chan ActionItem, 1000),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.storage, d.queue)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
		d.wg.Wait()
	})
}

// Process enqueues action and waits for its outcome. ctx only bounds the wait for a queue slot:
// once queued, the reported error is always the action's real outcome, so a caller never sees
// a failure for a change that committed. A worker that picks up an item whose ctx has already
// ended skips it and reports ctx.Err().
func (d *OperatorDelegator) Process(ctx context.Context, action IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	select {
	case d.queue <- item:
	case <-ctx.Done():
		return ctx.Err()
	}

	resp := <-respCh
	return resp.err
}

// Inline is a Processor that runs each action on the caller's goroutine. The batch scheduler
// uses it so its own concurrency limit is not hidden behind the shared queue.
type Inline struct {
	Storage storage.Storage
}

func (i Inline) Process(ctx context.Context, action IAction) error {
	return Execute(ctx, i.Storage, action)
}
