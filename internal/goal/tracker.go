// Package goal keeps each goal's accumulated amount in step with the ledger and serves goal CRUD.
package goal

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Recompute sets g.CurrentAmount to the sum of the owner's EXPENSE transactions in g's category
// dated within [StartDate, EndDate] and persists it. A goal without a category tracks nothing.
func Recompute(ctx context.Context, tables *storage.Tables, g *domain.Goal) error {
	current := decimal.Zero
	if g.CategoryID.Valid {
		sum, err := tables.Transactions.SumExpenses(ctx, g.OwnerID, g.CategoryID.UUID, g.StartDate, g.EndDate)
		if err != nil {
			return fmt.Errorf("sum expenses for goal %s: %w", g.ID, err)
		}
		current = sum
	}

	if err := tables.Goals.UpdateCurrentAmount(ctx, g.ID, current); err != nil {
		return fmt.Errorf("update goal %s: %w", g.ID, err)
	}
	g.CurrentAmount = current
	return nil
}

// Touch names a category and day whose goals a ledger write may have changed.
type Touch struct {
	CategoryID uuid.UUID
	Day        time.Time
}

// RecomputeFor refreshes every goal of ownerID whose category and window match one of touches.
// All candidate goals are locked before any sum runs, so concurrent writers to the same category
// recompute one after the other and each sees the other's committed expense. Inactive goals are
// refreshed too so their reported amount stays truthful.
func RecomputeFor(ctx context.Context, tables *storage.Tables, ownerID uuid.UUID, touches ...Touch) error {
	var categoryIDs []uuid.UUID
	for _, touch := range touches {
		if !slices.Contains(categoryIDs, touch.CategoryID) {
			categoryIDs = append(categoryIDs, touch.CategoryID)
		}
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	goals, err := tables.Goals.ListByCategoriesForUpdate(ctx, ownerID, categoryIDs)
	if err != nil {
		return fmt.Errorf("lock goals for categories %v: %w", categoryIDs, err)
	}

	for _, g := range goals {
		touched := slices.ContainsFunc(touches, func(touch Touch) bool {
			return touch.CategoryID == g.CategoryID.UUID && domain.Within(touch.Day, g.StartDate, g.EndDate)
		})
		if !touched {
			continue
		}
		if err := Recompute(ctx, tables, g); err != nil {
			return err
		}
	}
	return nil
}
