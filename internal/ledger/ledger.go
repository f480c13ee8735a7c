// Package ledger records transactions and keeps wallet balances equal to the sum of their effects.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

const defaultPageSize = 20

// ListFilter narrows a transaction listing. Nil fields do not filter.
type ListFilter struct {
	WalletID   *uuid.UUID
	CategoryID *uuid.UUID
	Kind       *domain.TransactionKind
	From       *time.Time
	To         *time.Time
}

// Cursor identifies a position in a paginated listing and carries the limit and
// maxCreationTime so subsequent pages are consistent.
type Cursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

// Page contains a page of transactions and an optional next cursor.
type Page struct {
	Transactions []*domain.Transaction
	NextCursor   *Cursor
}

type Ledger struct {
	storage   storage.Storage
	processor operator.Processor
	publisher events.Publisher
	logger    *logrus.Logger
	now       func() time.Time
}

func New(s storage.Storage, p operator.Processor, publisher events.Publisher, logger *logrus.Logger) *Ledger {
	return &Ledger{
		storage:   s,
		processor: p,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the ledger's time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

func (l *Ledger) CreateTransaction(ctx context.Context, ownerID uuid.UUID, in NewTransaction) (*domain.Transaction, error) {
	action := &CreateTransaction{OwnerID: ownerID, Input: in, Now: l.now()}
	if err := l.processor.Process(ctx, action); err != nil {
		return nil, err
	}
	l.emit(ctx, events.TransactionCreated, action.Result)
	return action.Result, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, ownerID, id uuid.UUID, patch TransactionPatch) (*domain.Transaction, error) {
	action := &UpdateTransaction{OwnerID: ownerID, TransactionID: id, Patch: patch, Now: l.now()}
	if err := l.processor.Process(ctx, action); err != nil {
		return nil, err
	}
	l.emit(ctx, events.TransactionUpdated, action.Result)
	return action.Result, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) error {
	action := &DeleteTransaction{OwnerID: ownerID, TransactionID: id}
	if err := l.processor.Process(ctx, action); err != nil {
		return err
	}
	l.emit(ctx, events.TransactionDeleted, action.Result)
	return nil
}

func (l *Ledger) GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error) {
	return Find(ctx, l.storage.Read(), ownerID, id)
}

// ListTransactions returns one page of the owner's transactions, newest date first. Passing the
// returned cursor back continues the same snapshot.
func (l *Ledger) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter, cursor *Cursor) (*Page, error) {
	position, limit, maxCreationTime := 0, defaultPageSize, l.now().UTC()
	if cursor != nil {
		position = cursor.Position
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		if !cursor.MaxCreationTime.IsZero() {
			maxCreationTime = cursor.MaxCreationTime
		}
	}

	txs, err := l.storage.Read().Transactions.List(ctx, &transaction.Filter{
		OwnerID:         ownerID,
		WalletID:        filter.WalletID,
		CategoryID:      filter.CategoryID,
		Kind:            filter.Kind,
		From:            filter.From,
		To:              filter.To,
		MaxCreationTime: &maxCreationTime,
		Limit:           limit,
		Offset:          position,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	page := &Page{Transactions: txs}
	if len(txs) > limit {
		page.Transactions = txs[:limit]
		page.NextCursor = &Cursor{
			Position:        position + limit,
			Limit:           limit,
			MaxCreationTime: maxCreationTime,
		}
	}
	return page, nil
}

// GetBalance reads the committed balance of an owned wallet.
func (l *Ledger) GetBalance(ctx context.Context, ownerID, walletID uuid.UUID) (decimal.Decimal, error) {
	w, err := l.storage.Read().Wallets.FindByID(ctx, walletID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet %s: %w", walletID, err)
	}
	if _, err := domain.RequireOwned(w, ownerID); err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

func (l *Ledger) emit(ctx context.Context, eventType events.Type, tx *domain.Transaction) {
	events.Emit(ctx, l.publisher, l.logger, EventFor(eventType, tx, l.now()))
}

// EventFor describes a committed change to tx.
func EventFor(eventType events.Type, tx *domain.Transaction, at time.Time) events.Event {
	walletIDs := []uuid.UUID{tx.SourceWalletID}
	if tx.DestinationWalletID.Valid {
		walletIDs = append(walletIDs, tx.DestinationWalletID.UUID)
	}
	return events.Event{
		Type:          eventType,
		OwnerID:       tx.OwnerID,
		TransactionID: tx.ID,
		WalletIDs:     walletIDs,
		Amount:        tx.Amount,
		OccurredAt:    at.UTC(),
	}
}
