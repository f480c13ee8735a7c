package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage/category"
	"github.com/carson-networks/ledger-server/internal/storage/goal"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
	"github.com/carson-networks/ledger-server/internal/storage/wallet"
)

var (
	_ wallet.IWalletTable           = (*walletTable)(nil)
	_ category.ICategoryTable       = (*categoryTable)(nil)
	_ transaction.ITransactionTable = (*transactionTable)(nil)
	_ goal.IGoalTable               = (*goalTable)(nil)
	_ recurring.IRecurringTable     = (*recurringTable)(nil)
)

func find[T any](m map[uuid.UUID]T, id uuid.UUID) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func replace[T any](m map[uuid.UUID]T, id uuid.UUID, v T) error {
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	m[id] = v
	return nil
}

func remove[T any](m map[uuid.UUID]T, id uuid.UUID) error {
	if _, ok := m[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m, id)
	return nil
}

func collect[T any](m map[uuid.UUID]T, keep func(*T) bool) []*T {
	var result []*T
	for _, v := range m {
		if keep(&v) {
			result = append(result, &v)
		}
	}
	return result
}

func count[T any](m map[uuid.UUID]T, keep func(*T) bool) int {
	n := 0
	for _, v := range m {
		if keep(&v) {
			n++
		}
	}
	return n
}

func compareIDs(a, b uuid.UUID) int {
	return strings.Compare(a.String(), b.String())
}

type walletTable struct{ current func() *state }

func (t *walletTable) FindByID(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	return find(t.current().wallets, id)
}

// FindByIDForUpdate needs no lock: writers are already serialized by the store.
func (t *walletTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	return t.FindByID(ctx, id)
}

func (t *walletTable) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	result := collect(t.current().wallets, func(w *domain.Wallet) bool { return w.OwnerID == ownerID })
	slices.SortFunc(result, func(a, b *domain.Wallet) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), compareIDs(a.ID, b.ID))
	})
	return result, nil
}

func (t *walletTable) Insert(_ context.Context, w *domain.Wallet) error {
	t.current().wallets[w.ID] = *w
	return nil
}

func (t *walletTable) Update(_ context.Context, w *domain.Wallet) error {
	existing, err := find(t.current().wallets, w.ID)
	if err != nil {
		return err
	}
	existing.Name = w.Name
	existing.Kind = w.Kind
	return replace(t.current().wallets, w.ID, *existing)
}

func (t *walletTable) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	existing, err := find(t.current().wallets, id)
	if err != nil {
		return err
	}
	existing.Balance = balance
	return replace(t.current().wallets, id, *existing)
}

func (t *walletTable) Delete(_ context.Context, id uuid.UUID) error {
	return remove(t.current().wallets, id)
}

type categoryTable struct{ current func() *state }

func (t *categoryTable) FindByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	return find(t.current().categories, id)
}

func (t *categoryTable) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	result := collect(t.current().categories, func(c *domain.Category) bool { return c.OwnerID == ownerID })
	slices.SortFunc(result, func(a, b *domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return result, nil
}

func (t *categoryTable) Insert(_ context.Context, c *domain.Category) error {
	t.current().categories[c.ID] = *c
	return nil
}

func (t *categoryTable) Update(_ context.Context, c *domain.Category) error {
	existing, err := find(t.current().categories, c.ID)
	if err != nil {
		return err
	}
	existing.Name = c.Name
	return replace(t.current().categories, c.ID, *existing)
}

func (t *categoryTable) Delete(_ context.Context, id uuid.UUID) error {
	return remove(t.current().categories, id)
}

type transactionTable struct{ current func() *state }

func (t *transactionTable) FindByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return find(t.current().transactions, id)
}

func (t *transactionTable) List(_ context.Context, filter *transaction.Filter) ([]*domain.Transaction, error) {
	result := collect(t.current().transactions, func(tx *domain.Transaction) bool {
		switch {
		case tx.OwnerID != filter.OwnerID:
			return false
		case filter.WalletID != nil && tx.SourceWalletID != *filter.WalletID &&
			!(tx.DestinationWalletID.Valid && tx.DestinationWalletID.UUID == *filter.WalletID):
			return false
		case filter.CategoryID != nil && !(tx.CategoryID.Valid && tx.CategoryID.UUID == *filter.CategoryID):
			return false
		case filter.Kind != nil && tx.Kind != *filter.Kind:
			return false
		case filter.From != nil && tx.Date.Before(*filter.From):
			return false
		case filter.To != nil && tx.Date.After(*filter.To):
			return false
		case filter.MaxCreationTime != nil && tx.CreatedAt.After(*filter.MaxCreationTime):
			return false
		}
		return true
	})
	slices.SortFunc(result, func(a, b *domain.Transaction) int {
		return cmp.Or(b.Date.Compare(a.Date), b.CreatedAt.Compare(a.CreatedAt), compareIDs(b.ID, a.ID))
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit+1 {
		result = result[:filter.Limit+1]
	}
	return result, nil
}

func (t *transactionTable) Insert(_ context.Context, tx *domain.Transaction) error {
	t.current().transactions[tx.ID] = *tx
	return nil
}

func (t *transactionTable) Update(_ context.Context, tx *domain.Transaction) error {
	existing, err := find(t.current().transactions, tx.ID)
	if err != nil {
		return err
	}
	updated := *tx
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	return replace(t.current().transactions, tx.ID, updated)
}

func (t *transactionTable) Delete(_ context.Context, id uuid.UUID) error {
	return remove(t.current().transactions, id)
}

func (t *transactionTable) SumExpenses(_ context.Context, ownerID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tx := range t.current().transactions {
		if tx.OwnerID == ownerID && tx.Kind == domain.TransactionKindExpense &&
			tx.CategoryID.Valid && tx.CategoryID.UUID == categoryID &&
			domain.Within(tx.Date, start, end) {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum, nil
}

func (t *transactionTable) CountByWallet(_ context.Context, walletID uuid.UUID) (int, error) {
	return count(t.current().transactions, func(tx *domain.Transaction) bool {
		return tx.SourceWalletID == walletID || (tx.DestinationWalletID.Valid && tx.DestinationWalletID.UUID == walletID)
	}), nil
}

func (t *transactionTable) CountByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	return count(t.current().transactions, func(tx *domain.Transaction) bool {
		return tx.CategoryID.Valid && tx.CategoryID.UUID == categoryID
	}), nil
}

type goalTable struct{ current func() *state }

func (t *goalTable) FindByID(_ context.Context, id uuid.UUID) (*domain.Goal, error) {
	return find(t.current().goals, id)
}

func (t *goalTable) sorted(keep func(*domain.Goal) bool) []*domain.Goal {
	result := collect(t.current().goals, keep)
	slices.SortFunc(result, func(a, b *domain.Goal) int {
		return cmp.Or(b.StartDate.Compare(a.StartDate), strings.Compare(a.Name, b.Name))
	})
	return result
}

func (t *goalTable) ListByOwner(_ context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.Goal, error) {
	return t.sorted(func(g *domain.Goal) bool {
		return g.OwnerID == ownerID && (!activeOnly || g.Active)
	}), nil
}

// FindByIDForUpdate needs no lock: writers are already serialized by the store.
func (t *goalTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	return t.FindByID(ctx, id)
}

func (t *goalTable) ListByCategoriesForUpdate(_ context.Context, ownerID uuid.UUID, categoryIDs []uuid.UUID) ([]*domain.Goal, error) {
	result := collect(t.current().goals, func(g *domain.Goal) bool {
		return g.OwnerID == ownerID && g.CategoryID.Valid && slices.Contains(categoryIDs, g.CategoryID.UUID)
	})
	slices.SortFunc(result, func(a, b *domain.Goal) int { return slices.Compare(a.ID[:], b.ID[:]) })
	return result, nil
}

func (t *goalTable) Insert(_ context.Context, g *domain.Goal) error {
	t.current().goals[g.ID] = *g
	return nil
}

func (t *goalTable) Update(_ context.Context, g *domain.Goal) error {
	existing, err := find(t.current().goals, g.ID)
	if err != nil {
		return err
	}
	updated := *g
	updated.CurrentAmount = existing.CurrentAmount
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	return replace(t.current().goals, g.ID, updated)
}

func (t *goalTable) UpdateCurrentAmount(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	existing, err := find(t.current().goals, id)
	if err != nil {
		return err
	}
	existing.CurrentAmount = amount
	return replace(t.current().goals, id, *existing)
}

func (t *goalTable) Delete(_ context.Context, id uuid.UUID) error {
	return remove(t.current().goals, id)
}

func (t *goalTable) CountByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	return count(t.current().goals, func(g *domain.Goal) bool {
		return g.CategoryID.Valid && g.CategoryID.UUID == categoryID
	}), nil
}

type recurringTable struct{ current func() *state }

func (t *recurringTable) FindByID(_ context.Context, id uuid.UUID) (*domain.RecurringDefinition, error) {
	return find(t.current().recurring, id)
}

func (t *recurringTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecurringDefinition, error) {
	return t.FindByID(ctx, id)
}

func (t *recurringTable) sorted(keep func(*domain.RecurringDefinition) bool) []*domain.RecurringDefinition {
	result := collect(t.current().recurring, keep)
	slices.SortFunc(result, func(a, b *domain.RecurringDefinition) int {
		return cmp.Or(a.NextExecution.Compare(b.NextExecution), compareIDs(a.ID, b.ID))
	})
	return result
}

func (t *recurringTable) ListByOwner(_ context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.RecurringDefinition, error) {
	return t.sorted(func(d *domain.RecurringDefinition) bool {
		return d.OwnerID == ownerID && (!activeOnly || d.Active)
	}), nil
}

func (t *recurringTable) ListDue(_ context.Context, today time.Time) ([]uuid.UUID, error) {
	due := t.sorted(func(d *domain.RecurringDefinition) bool {
		return d.Active && !d.NextExecution.After(today) && !d.Expired(today)
	})
	ids := make([]uuid.UUID, len(due))
	for i, d := range due {
		ids[i] = d.ID
	}
	return ids, nil
}

func (t *recurringTable) Insert(_ context.Context, d *domain.RecurringDefinition) error {
	t.current().recurring[d.ID] = *d
	return nil
}

func (t *recurringTable) Update(_ context.Context, d *domain.RecurringDefinition) error {
	existing, err := find(t.current().recurring, d.ID)
	if err != nil {
		return err
	}
	updated := *d
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	return replace(t.current().recurring, d.ID, updated)
}

func (t *recurringTable) Delete(_ context.Context, id uuid.UUID) error {
	return remove(t.current().recurring, id)
}

func (t *recurringTable) CountByWallet(_ context.Context, walletID uuid.UUID) (int, error) {
	return count(t.current().recurring, func(d *domain.RecurringDefinition) bool { return d.WalletID == walletID }), nil
}

func (t *recurringTable) CountByCategory(_ context.Context, categoryID uuid.UUID) (int, error) {
	return count(t.current().recurring, func(d *domain.RecurringDefinition) bool {
		return d.CategoryID.Valid && d.CategoryID.UUID == categoryID
	}), nil
}
