package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// WalletService handles wallet business logic.
type WalletService struct {
	storage   storage.Storage
	processor operator.Processor
	now       func() time.Time
}

// NewWalletService creates a new WalletService.
func NewWalletService(s storage.Storage, p operator.Processor) *WalletService {
	return &WalletService{storage: s, processor: p, now: time.Now}
}

func findWallet(ctx context.Context, tables *storage.Tables, ownerID, id uuid.UUID) (*domain.Wallet, error) {
	w, err := tables.Wallets.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("wallet %s: %w", id, err)
	}
	return domain.RequireOwned(w, ownerID)
}

// CreateWallet opens a wallet with a non-negative initial balance.
func (s *WalletService) CreateWallet(ctx context.Context, ownerID uuid.UUID, in NewWallet) (*domain.Wallet, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("wallet kind %q: %w", in.Kind, domain.ErrInvalidKind)
	}
	if in.InitialBalance.IsNegative() || !in.InitialBalance.Equal(in.InitialBalance.Round(domain.MoneyPlaces)) {
		return nil, fmt.Errorf("initial balance %s: %w", in.InitialBalance, domain.ErrInvalidAmount)
	}

	w := &domain.Wallet{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		Name:      in.Name,
		Kind:      in.Kind,
		Balance:   in.InitialBalance,
		CreatedAt: s.now().UTC(),
	}
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, writer *storage.Writer) error {
		return writer.Wallets.Insert(ctx, w)
	}))
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetWallet retrieves an owned wallet by ID.
func (s *WalletService) GetWallet(ctx context.Context, ownerID, id uuid.UUID) (*domain.Wallet, error) {
	return findWallet(ctx, s.storage.Read(), ownerID, id)
}

// ListWallets returns every wallet of the owner ordered by name.
func (s *WalletService) ListWallets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	return s.storage.Read().Wallets.ListByOwner(ctx, ownerID)
}

// UpdateWallet renames or re-kinds a wallet.
func (s *WalletService) UpdateWallet(ctx context.Context, ownerID, id uuid.UUID, patch WalletPatch) (*domain.Wallet, error) {
	if kind, ok := patch.Kind.Get(); ok && !kind.Valid() {
		return nil, fmt.Errorf("wallet kind %q: %w", kind, domain.ErrInvalidKind)
	}

	var updated *domain.Wallet
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, writer *storage.Writer) error {
		w, err := findWallet(ctx, writer.Tables, ownerID, id)
		if err != nil {
			return err
		}
		w.Name = patch.Name.GetOr(w.Name)
		w.Kind = patch.Kind.GetOr(w.Kind)
		if err := writer.Wallets.Update(ctx, w); err != nil {
			return fmt.Errorf("update wallet: %w", err)
		}
		updated = w
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteWallet removes a wallet no transaction or recurring definition refers to.
func (s *WalletService) DeleteWallet(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, writer *storage.Writer) error {
		if _, err := findWallet(ctx, writer.Tables, ownerID, id); err != nil {
			return err
		}

		transactions, err := writer.Transactions.CountByWallet(ctx, id)
		if err != nil {
			return err
		}
		definitions, err := writer.Recurring.CountByWallet(ctx, id)
		if err != nil {
			return err
		}
		if transactions > 0 || definitions > 0 {
			return fmt.Errorf("wallet %s has %d transactions and %d recurring definitions: %w",
				id, transactions, definitions, domain.ErrInUse)
		}

		return writer.Wallets.Delete(ctx, id)
	}))
}
