package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage/wallet"
)

// Effect is one signed balance change a transaction causes on one wallet.
type Effect struct {
	WalletID          uuid.UUID
	Delta             decimal.Decimal
	MustNotGoNegative bool
}

// EffectsOf returns the balance changes that applying tx causes, in application order.
func EffectsOf(tx *domain.Transaction) []Effect {
	switch tx.Kind {
	case domain.TransactionKindIncome:
		return []Effect{{WalletID: tx.SourceWalletID, Delta: tx.Amount}}
	case domain.TransactionKindExpense:
		return []Effect{{WalletID: tx.SourceWalletID, Delta: tx.Amount.Neg(), MustNotGoNegative: true}}
	case domain.TransactionKindTransfer:
		return []Effect{
			{WalletID: tx.SourceWalletID, Delta: tx.Amount.Neg(), MustNotGoNegative: true},
			{WalletID: tx.DestinationWalletID.UUID, Delta: tx.Amount},
		}
	}
	return nil
}

// Reverse negates effects. Reversal never checks funds: the money is returning.
func Reverse(effects []Effect) []Effect {
	reversed := make([]Effect, len(effects))
	for i, e := range effects {
		reversed[i] = Effect{WalletID: e.WalletID, Delta: e.Delta.Neg()}
	}
	return reversed
}

// Net sums effects per wallet.
func Net(effects []Effect) map[uuid.UUID]decimal.Decimal {
	net := make(map[uuid.UUID]decimal.Decimal, len(effects))
	for _, e := range effects {
		net[e.WalletID] = net[e.WalletID].Add(e.Delta)
	}
	return net
}

// AdjustBalance adds delta to the wallet's balance as one locked read-modify-write. When
// mustNotGoNegative is set and the result would be below zero it fails with
// ErrInsufficientFunds and writes nothing.
func AdjustBalance(ctx context.Context, wallets wallet.IWalletTable, walletID uuid.UUID, delta decimal.Decimal, mustNotGoNegative bool) (decimal.Decimal, error) {
	w, err := wallets.FindByIDForUpdate(ctx, walletID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet %s: %w", walletID, err)
	}

	balance := w.Balance.Add(delta)
	if mustNotGoNegative && balance.IsNegative() {
		return w.Balance, fmt.Errorf("wallet %s balance %s cannot cover %s: %w",
			walletID, w.Balance.StringFixed(domain.MoneyPlaces), delta.Neg().StringFixed(domain.MoneyPlaces), domain.ErrInsufficientFunds)
	}

	if err := wallets.UpdateBalance(ctx, walletID, balance); err != nil {
		return w.Balance, fmt.Errorf("update wallet %s balance: %w", walletID, err)
	}
	return balance, nil
}

// lockWallets takes row locks on every wallet touched by effects in one global order, so two
// units of work touching the same pair of wallets cannot deadlock.
func lockWallets(ctx context.Context, wallets wallet.IWalletTable, effects ...[]Effect) error {
	var ids []uuid.UUID
	for _, group := range effects {
		for _, e := range group {
			ids = append(ids, e.WalletID)
		}
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	for _, id := range ids {
		if _, err := wallets.FindByIDForUpdate(ctx, id); err != nil {
			return fmt.Errorf("wallet %s: %w", id, err)
		}
	}
	return nil
}

func apply(ctx context.Context, wallets wallet.IWalletTable, effects []Effect) error {
	for _, e := range effects {
		if _, err := AdjustBalance(ctx, wallets, e.WalletID, e.Delta, e.MustNotGoNegative); err != nil {
			return err
		}
	}
	return nil
}
