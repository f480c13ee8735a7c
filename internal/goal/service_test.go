package goal

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

func date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store    *memory.Store
	service  *Service
	owner    uuid.UUID
	wallet   uuid.UUID
	category uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{
		store:    store,
		service:  NewService(store, operator.Inline{Storage: store}),
		owner:    uuid.Must(uuid.NewV4()),
		wallet:   uuid.Must(uuid.NewV4()),
		category: uuid.Must(uuid.NewV4()),
	}
	f.write(t, func(ctx context.Context, w *storage.Writer) error {
		if err := w.Wallets.Insert(ctx, &domain.Wallet{ID: f.wallet, OwnerID: f.owner, Name: "Cash", Kind: domain.WalletKindCash}); err != nil {
			return err
		}
		return w.Categories.Insert(ctx, &domain.Category{ID: f.category, OwnerID: f.owner, Name: "Food"})
	})
	return f
}

func (f *fixture) write(t *testing.T, fn func(ctx context.Context, w *storage.Writer) error) {
	t.Helper()
	require.NoError(t, operator.Execute(context.Background(), f.store, operator.ActionFunc(fn)))
}

// record stores a transaction directly; balances are irrelevant to goal tracking.
func (f *fixture) record(t *testing.T, kind domain.TransactionKind, value string, day time.Time, categoryID uuid.UUID) {
	t.Helper()
	f.write(t, func(ctx context.Context, w *storage.Writer) error {
		return w.Transactions.Insert(ctx, &domain.Transaction{
			ID:             uuid.Must(uuid.NewV4()),
			OwnerID:        f.owner,
			Amount:         decimal.RequireFromString(value),
			Kind:           kind,
			Date:           day,
			SourceWalletID: f.wallet,
			CategoryID:     uuid.NullUUID{UUID: categoryID, Valid: true},
		})
	})
}

func (f *fixture) newGoal() NewGoal {
	return NewGoal{
		Name:         "Food budget",
		TargetAmount: decimal.RequireFromString("100.00"),
		Period:       domain.GoalPeriodMonthly,
		StartDate:    date(time.January, 1),
		EndDate:      date(time.January, 31),
		CategoryID:   uuid.NullUUID{UUID: f.category, Valid: true},
	}
}

func TestCreate_ComputesFromExistingExpenses(t *testing.T) {
	f := newFixture(t)
	f.record(t, domain.TransactionKindExpense, "30.00", date(time.January, 1), f.category)
	f.record(t, domain.TransactionKindExpense, "65.00", date(time.January, 31), f.category)
	f.record(t, domain.TransactionKindExpense, "99.00", date(time.February, 1), f.category)
	f.record(t, domain.TransactionKindIncome, "99.00", date(time.January, 10), f.category)

	g, err := f.service.Create(context.Background(), f.owner, f.newGoal())
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.Equal(decimal.RequireFromString("95.00")))
	assert.Equal(t, domain.GoalStatusAchieved, g.Status())

	stored, err := f.service.Get(context.Background(), f.owner, g.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.Equal(decimal.RequireFromString("95.00")))
}

func TestCreate_WithoutCategoryReadsZero(t *testing.T) {
	f := newFixture(t)
	f.record(t, domain.TransactionKindExpense, "30.00", date(time.January, 5), f.category)

	in := f.newGoal()
	in.CategoryID = uuid.NullUUID{}
	g, err := f.service.Create(context.Background(), f.owner, in)
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.IsZero())

	refreshed, err := f.service.Refresh(context.Background(), f.owner, g.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.CurrentAmount.IsZero())
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	in := f.newGoal()
	in.TargetAmount = decimal.Zero
	_, err := f.service.Create(context.Background(), f.owner, in)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	in = f.newGoal()
	in.StartDate, in.EndDate = in.EndDate, in.StartDate
	_, err = f.service.Create(context.Background(), f.owner, in)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	in = f.newGoal()
	in.Period = "WEEKLY"
	_, err = f.service.Create(context.Background(), f.owner, in)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	in = f.newGoal()
	in.CategoryID = uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true}
	_, err = f.service.Create(context.Background(), f.owner, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.Create(context.Background(), uuid.Must(uuid.NewV4()), f.newGoal())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdate_RecomputesOverNewWindow(t *testing.T) {
	f := newFixture(t)
	f.record(t, domain.TransactionKindExpense, "30.00", date(time.January, 5), f.category)
	f.record(t, domain.TransactionKindExpense, "20.00", date(time.February, 5), f.category)

	g, err := f.service.Create(context.Background(), f.owner, f.newGoal())
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.Equal(decimal.RequireFromString("30.00")))

	g, err = f.service.Update(context.Background(), f.owner, g.ID, Patch{EndDate: omit.From(date(time.February, 28))})
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.Equal(decimal.RequireFromString("50.00")))

	_, err = f.service.Update(context.Background(), f.owner, g.ID, Patch{EndDate: omit.From(date(time.January, 1).AddDate(-1, 0, 0))})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestRecomputeFor_OnlyGoalsContainingDay(t *testing.T) {
	f := newFixture(t)
	january, err := f.service.Create(context.Background(), f.owner, f.newGoal())
	require.NoError(t, err)

	in := f.newGoal()
	in.StartDate, in.EndDate = date(time.February, 1), date(time.February, 28)
	february, err := f.service.Create(context.Background(), f.owner, in)
	require.NoError(t, err)

	_, err = f.service.SetActive(context.Background(), f.owner, january.ID, false)
	require.NoError(t, err)

	f.record(t, domain.TransactionKindExpense, "12.00", date(time.January, 15), f.category)
	f.write(t, func(ctx context.Context, w *storage.Writer) error {
		return RecomputeFor(ctx, w.Tables, f.owner, Touch{CategoryID: f.category, Day: date(time.January, 15)})
	})

	got, err := f.service.Get(context.Background(), f.owner, january.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.RequireFromString("12.00")), "inactive goals are still recomputed")

	got, err = f.service.Get(context.Background(), f.owner, february.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.IsZero())

	active, err := f.service.List(context.Background(), f.owner, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, february.ID, active[0].ID)
}

func TestRecomputeFor_SeveralCategoriesInOnePass(t *testing.T) {
	f := newFixture(t)
	travel := uuid.Must(uuid.NewV4())
	f.write(t, func(ctx context.Context, w *storage.Writer) error {
		return w.Categories.Insert(ctx, &domain.Category{ID: travel, OwnerID: f.owner, Name: "Travel"})
	})

	food, err := f.service.Create(context.Background(), f.owner, f.newGoal())
	require.NoError(t, err)
	in := f.newGoal()
	in.CategoryID = uuid.NullUUID{UUID: travel, Valid: true}
	trips, err := f.service.Create(context.Background(), f.owner, in)
	require.NoError(t, err)

	f.record(t, domain.TransactionKindExpense, "7.50", date(time.January, 3), f.category)
	f.record(t, domain.TransactionKindExpense, "40.00", date(time.January, 4), travel)
	f.write(t, func(ctx context.Context, w *storage.Writer) error {
		return RecomputeFor(ctx, w.Tables, f.owner,
			Touch{CategoryID: travel, Day: date(time.January, 4)},
			Touch{CategoryID: f.category, Day: date(time.January, 3)},
			Touch{CategoryID: f.category, Day: date(time.March, 3)},
		)
	})

	got, err := f.service.Get(context.Background(), f.owner, food.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.RequireFromString("7.50")), got.CurrentAmount.String())
	got, err = f.service.Get(context.Background(), f.owner, trips.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(decimal.RequireFromString("40.00")), got.CurrentAmount.String())

	require.NoError(t, operator.Execute(context.Background(), f.store, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		return RecomputeFor(ctx, w.Tables, f.owner)
	})), "no touches is a no-op")
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	g, err := f.service.Create(context.Background(), f.owner, f.newGoal())
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Delete(context.Background(), uuid.Must(uuid.NewV4()), g.ID), domain.ErrForbidden)
	require.NoError(t, f.service.Delete(context.Background(), f.owner, g.ID))
	_, err = f.service.Get(context.Background(), f.owner, g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
