// Package memory is a transactional in-process Storage used by tests and single-node deployments.
//
// One writer runs at a time. A writer works on a private copy of the committed state, and Commit
// publishes that copy atomically, so readers never observe a half-applied unit of work.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage"
)

var errFinished = errors.New("memory: transaction already finished")

type state struct {
	wallets      map[uuid.UUID]domain.Wallet
	categories   map[uuid.UUID]domain.Category
	transactions map[uuid.UUID]domain.Transaction
	goals        map[uuid.UUID]domain.Goal
	recurring    map[uuid.UUID]domain.RecurringDefinition
}

func newState() *state {
	return &state{
		wallets:      map[uuid.UUID]domain.Wallet{},
		categories:   map[uuid.UUID]domain.Category{},
		transactions: map[uuid.UUID]domain.Transaction{},
		goals:        map[uuid.UUID]domain.Goal{},
		recurring:    map[uuid.UUID]domain.RecurringDefinition{},
	}
}

func cloneMap[T any](src map[uuid.UUID]T) map[uuid.UUID]T {
	dst := make(map[uuid.UUID]T, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *state) clone() *state {
	recurring := make(map[uuid.UUID]domain.RecurringDefinition, len(s.recurring))
	for k, v := range s.recurring {
		if v.EndDate != nil {
			end := *v.EndDate
			v.EndDate = &end
		}
		recurring[k] = v
	}
	return &state{
		wallets:      cloneMap(s.wallets),
		categories:   cloneMap(s.categories),
		transactions: cloneMap(s.transactions),
		goals:        cloneMap(s.goals),
		recurring:    recurring,
	}
}

// Store implements storage.Storage in memory.
type Store struct {
	txMu      sync.Mutex
	dataMu    sync.RWMutex
	committed *state
	reader    *storage.Tables
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	s := &Store{committed: newState()}
	s.reader = tablesOver(s.snapshot)
	return s
}

func (s *Store) snapshot() *state {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	return s.committed
}

func (s *Store) Read() *storage.Tables {
	return s.reader
}

// Write blocks until any other open writer finishes or ctx is done.
func (s *Store) Write(ctx context.Context) (*storage.Writer, error) {
	acquired := make(chan struct{})
	go func() {
		s.txMu.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-ctx.Done():
		go func() {
			<-acquired
			s.txMu.Unlock()
		}()
		return nil, ctx.Err()
	}

	working := s.snapshot().clone()
	tx := &memoryTx{store: s, working: working}
	return storage.NewWriter(tx, tablesOver(func() *state { return working })), nil
}

func (s *Store) Close() error {
	return nil
}

type memoryTx struct {
	store    *Store
	working  *state
	finished bool
}

func (t *memoryTx) Commit(_ context.Context) error {
	if t.finished {
		return errFinished
	}
	t.finished = true
	t.store.dataMu.Lock()
	t.store.committed = t.working
	t.store.dataMu.Unlock()
	t.store.txMu.Unlock()
	return nil
}

func (t *memoryTx) Rollback(_ context.Context) error {
	if t.finished {
		return errFinished
	}
	t.finished = true
	t.store.txMu.Unlock()
	return nil
}

func tablesOver(current func() *state) *storage.Tables {
	return &storage.Tables{
		Wallets:      &walletTable{current: current},
		Categories:   &categoryTable{current: current},
		Transactions: &transactionTable{current: current},
		Goals:        &goalTable{current: current},
		Recurring:    &recurringTable{current: current},
	}
}
