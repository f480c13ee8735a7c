package transaction

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// Filter specifies filters for listing transactions. OwnerID is always applied.
// WalletID matches either side of a transfer.
type Filter struct {
	OwnerID         uuid.UUID
	WalletID        *uuid.UUID
	CategoryID      *uuid.UUID
	Kind            *domain.TransactionKind
	From            *time.Time
	To              *time.Time
	MaxCreationTime *time.Time
	Limit           int
	Offset          int
}

// ITransactionTable defines the interface for transaction storage operations.
// List fetches one row past Limit so callers can tell whether another page exists.
//
//go:generate mockery --name ITransactionTable --output mock_ITransactionTable.go
type ITransactionTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, filter *Filter) ([]*domain.Transaction, error)
	Insert(ctx context.Context, tx *domain.Transaction) error
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	SumExpenses(ctx context.Context, ownerID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	CountByWallet(ctx context.Context, walletID uuid.UUID) (int, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}
