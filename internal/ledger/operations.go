package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/goal"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// NewTransaction is the input for recording a transaction. A zero Date means today.
type NewTransaction struct {
	Description         string
	Amount              decimal.Decimal
	Kind                domain.TransactionKind
	Date                time.Time
	SourceWalletID      uuid.UUID
	DestinationWalletID uuid.NullUUID
	CategoryID          uuid.NullUUID
}

// TransactionPatch carries the fields of a transaction update; unset fields keep their value.
// Changing Kind away from TRANSFER drops the destination unless one is given explicitly.
type TransactionPatch struct {
	Description         omit.Val[string]
	Amount              omit.Val[decimal.Decimal]
	Kind                omit.Val[domain.TransactionKind]
	Date                omit.Val[time.Time]
	SourceWalletID      omit.Val[uuid.UUID]
	DestinationWalletID omit.Val[uuid.NullUUID]
	CategoryID          omit.Val[uuid.NullUUID]
}

// validateShape checks everything about tx that needs no storage access.
func validateShape(tx *domain.Transaction) error {
	if err := domain.ValidateAmount(tx.Amount); err != nil {
		return err
	}
	if !tx.Kind.Valid() {
		return fmt.Errorf("transaction kind %q: %w", tx.Kind, domain.ErrInvalidKind)
	}
	if tx.Kind == domain.TransactionKindTransfer {
		if !tx.DestinationWalletID.Valid {
			return fmt.Errorf("transfer needs a destination wallet: %w", domain.ErrInvalidTransfer)
		}
		if tx.DestinationWalletID.UUID == tx.SourceWalletID {
			return fmt.Errorf("transfer source and destination are both %s: %w", tx.SourceWalletID, domain.ErrInvalidTransfer)
		}
	} else if tx.DestinationWalletID.Valid {
		return fmt.Errorf("%s cannot have a destination wallet: %w", tx.Kind, domain.ErrInvalidTransfer)
	}
	return nil
}

// validateReferences checks that every wallet and the category exist and belong to tx's owner.
func validateReferences(ctx context.Context, tables *storage.Tables, tx *domain.Transaction) error {
	walletIDs := []uuid.UUID{tx.SourceWalletID}
	if tx.DestinationWalletID.Valid {
		walletIDs = append(walletIDs, tx.DestinationWalletID.UUID)
	}
	for _, id := range walletIDs {
		w, err := tables.Wallets.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("wallet %s: %w", id, err)
		}
		if _, err := domain.RequireOwned(w, tx.OwnerID); err != nil {
			return fmt.Errorf("wallet %s: %w", id, err)
		}
	}

	if tx.CategoryID.Valid {
		c, err := tables.Categories.FindByID(ctx, tx.CategoryID.UUID)
		if err != nil {
			return fmt.Errorf("category %s: %w", tx.CategoryID.UUID, err)
		}
		if _, err := domain.RequireOwned(c, tx.OwnerID); err != nil {
			return fmt.Errorf("category %s: %w", tx.CategoryID.UUID, err)
		}
	}
	return nil
}

// Find loads a transaction and checks it belongs to ownerID.
func Find(ctx context.Context, tables *storage.Tables, ownerID, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := tables.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, err)
	}
	return domain.RequireOwned(tx, ownerID)
}

// refreshGoals recomputes the goals covering every expense among txs in one locked pass.
func refreshGoals(ctx context.Context, tables *storage.Tables, txs ...*domain.Transaction) error {
	var (
		ownerID uuid.UUID
		touches []goal.Touch
	)
	for _, tx := range txs {
		if tx == nil || !tx.TouchesGoals() {
			continue
		}
		ownerID = tx.OwnerID
		touches = append(touches, goal.Touch{CategoryID: tx.CategoryID.UUID, Day: tx.Date})
	}
	if len(touches) == 0 {
		return nil
	}
	return goal.RecomputeFor(ctx, tables, ownerID, touches...)
}

// Create validates in, applies its balance effect and persists the transaction, all within w.
// The record is written only after every balance effect has succeeded.
func Create(ctx context.Context, w *storage.Writer, ownerID uuid.UUID, in NewTransaction, now time.Time) (*domain.Transaction, error) {
	date := in.Date
	if date.IsZero() {
		date = now
	}
	tx := &domain.Transaction{
		ID:                  uuid.Must(uuid.NewV7()),
		OwnerID:             ownerID,
		Description:         in.Description,
		Amount:              in.Amount,
		Kind:                in.Kind,
		Date:                domain.Day(date),
		SourceWalletID:      in.SourceWalletID,
		DestinationWalletID: in.DestinationWalletID,
		CategoryID:          in.CategoryID,
		CreatedAt:           now.UTC(),
		UpdatedAt:           now.UTC(),
	}

	if err := validateShape(tx); err != nil {
		return nil, err
	}
	if err := validateReferences(ctx, w.Tables, tx); err != nil {
		return nil, err
	}

	effects := EffectsOf(tx)
	if err := lockWallets(ctx, w.Wallets, effects); err != nil {
		return nil, err
	}
	if err := apply(ctx, w.Wallets, effects); err != nil {
		return nil, err
	}

	if err := w.Transactions.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	if err := refreshGoals(ctx, w.Tables, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Update reverts the stored transaction's effect and applies the patched one within w. Both
// steps share w's unit of work, so a failed new effect leaves balances as they were.
func Update(ctx context.Context, w *storage.Writer, ownerID, id uuid.UUID, patch TransactionPatch, now time.Time) (before, after *domain.Transaction, err error) {
	before, err = Find(ctx, w.Tables, ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	updated := *before
	updated.Description = patch.Description.GetOr(before.Description)
	updated.Amount = patch.Amount.GetOr(before.Amount)
	updated.Kind = patch.Kind.GetOr(before.Kind)
	if date, ok := patch.Date.Get(); ok {
		updated.Date = domain.Day(date)
	}
	updated.SourceWalletID = patch.SourceWalletID.GetOr(before.SourceWalletID)
	if destination, ok := patch.DestinationWalletID.Get(); ok {
		updated.DestinationWalletID = destination
	} else if updated.Kind != domain.TransactionKindTransfer {
		updated.DestinationWalletID = uuid.NullUUID{}
	}
	updated.CategoryID = patch.CategoryID.GetOr(before.CategoryID)
	updated.UpdatedAt = now.UTC()
	after = &updated

	if err := validateShape(after); err != nil {
		return nil, nil, err
	}
	if err := validateReferences(ctx, w.Tables, after); err != nil {
		return nil, nil, err
	}

	revert := Reverse(EffectsOf(before))
	forward := EffectsOf(after)
	if err := lockWallets(ctx, w.Wallets, revert, forward); err != nil {
		return nil, nil, err
	}
	if err := apply(ctx, w.Wallets, revert); err != nil {
		return nil, nil, err
	}
	if err := apply(ctx, w.Wallets, forward); err != nil {
		return nil, nil, err
	}

	if err := w.Transactions.Update(ctx, after); err != nil {
		return nil, nil, fmt.Errorf("update transaction: %w", err)
	}
	if err := refreshGoals(ctx, w.Tables, before, after); err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Delete reverts the transaction's effect and removes it within w.
func Delete(ctx context.Context, w *storage.Writer, ownerID, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := Find(ctx, w.Tables, ownerID, id)
	if err != nil {
		return nil, err
	}

	revert := Reverse(EffectsOf(tx))
	if err := lockWallets(ctx, w.Wallets, revert); err != nil {
		return nil, err
	}
	if err := apply(ctx, w.Wallets, revert); err != nil {
		return nil, err
	}

	if err := w.Transactions.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}
	if err := refreshGoals(ctx, w.Tables, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
