package wallet

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// IWalletTable defines the interface for wallet storage operations.
// Balance is only written through UpdateBalance, which callers pair with FindByIDForUpdate.
//
//go:generate mockery --name IWalletTable --output mock_IWalletTable.go
type IWalletTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error)
	Insert(ctx context.Context, wallet *domain.Wallet) error
	Update(ctx context.Context, wallet *domain.Wallet) error
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}
