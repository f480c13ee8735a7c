package ledger

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/davecgh/go-spew/spew"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

func TestExpense_UpdateThenDelete_RestoresBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "100.00")

	tx, err := f.ledger.CreateTransaction(ctx, f.owner, expense(walletID, "30.00"))
	require.NoError(t, err)
	assert.True(t, f.balance(t, walletID).Equal(amount("70.00")))

	_, err = f.ledger.UpdateTransaction(ctx, f.owner, tx.ID, TransactionPatch{Amount: omit.From(amount("50.00"))})
	require.NoError(t, err)
	assert.True(t, f.balance(t, walletID).Equal(amount("50.00")))

	require.NoError(t, f.ledger.DeleteTransaction(ctx, f.owner, tx.ID))
	assert.True(t, f.balance(t, walletID).Equal(amount("100.00")))

	assert.Equal(t, []events.Type{events.TransactionCreated, events.TransactionUpdated, events.TransactionDeleted}, f.publisher.types())
}

func TestTransfer_ThenDelete_RestoresBothWallets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "100.00")
	b := f.wallet(t, "0.00")

	tx, err := f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Description:         "Savings",
		Amount:              amount("40.00"),
		Kind:                domain.TransactionKindTransfer,
		SourceWalletID:      a,
		DestinationWalletID: some(b),
	})
	require.NoError(t, err)
	assert.True(t, f.balance(t, a).Equal(amount("60.00")))
	assert.True(t, f.balance(t, b).Equal(amount("40.00")))

	require.NoError(t, f.ledger.DeleteTransaction(ctx, f.owner, tx.ID))
	assert.True(t, f.balance(t, a).Equal(amount("100.00")))
	assert.True(t, f.balance(t, b).Equal(amount("0.00")))
}

func TestCreate_InsufficientFunds_LeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "100.00")
	b := f.wallet(t, "5.00")

	_, err := f.ledger.CreateTransaction(ctx, f.owner, expense(a, "100.01"))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	_, err = f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Description:         "Too much",
		Amount:              amount("150.00"),
		Kind:                domain.TransactionKindTransfer,
		SourceWalletID:      a,
		DestinationWalletID: some(b),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.True(t, f.balance(t, a).Equal(amount("100.00")))
	assert.True(t, f.balance(t, b).Equal(amount("5.00")))

	page, err := f.ledger.ListTransactions(ctx, f.owner, ListFilter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Transactions)
	assert.Empty(t, f.publisher.types())
}

func TestCreate_ExactBalanceAllowed(t *testing.T) {
	f := newFixture(t)
	walletID := f.wallet(t, "25.00")

	_, err := f.ledger.CreateTransaction(context.Background(), f.owner, expense(walletID, "25.00"))
	require.NoError(t, err)
	assert.True(t, f.balance(t, walletID).IsZero())
}

func TestUpdate_FailingNewEffect_KeepsOldEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "100.00")

	tx, err := f.ledger.CreateTransaction(ctx, f.owner, expense(walletID, "30.00"))
	require.NoError(t, err)

	_, err = f.ledger.UpdateTransaction(ctx, f.owner, tx.ID, TransactionPatch{Amount: omit.From(amount("500.00"))})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.True(t, f.balance(t, walletID).Equal(amount("70.00")))
	stored, err := f.ledger.GetTransaction(ctx, f.owner, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(amount("30.00")))
}

func TestUpdate_MovesEffectBetweenWallets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "100.00")
	b := f.wallet(t, "100.00")

	tx, err := f.ledger.CreateTransaction(ctx, f.owner, expense(a, "30.00"))
	require.NoError(t, err)

	updated, err := f.ledger.UpdateTransaction(ctx, f.owner, tx.ID, TransactionPatch{
		SourceWalletID: omit.From(b),
		Kind:           omit.From(domain.TransactionKindIncome),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindIncome, updated.Kind)

	assert.True(t, f.balance(t, a).Equal(amount("100.00")))
	assert.True(t, f.balance(t, b).Equal(amount("130.00")))
}

func TestUpdate_TransferToExpenseDropsDestination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "100.00")
	b := f.wallet(t, "0.00")

	tx, err := f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Description:         "Move",
		Amount:              amount("40.00"),
		Kind:                domain.TransactionKindTransfer,
		SourceWalletID:      a,
		DestinationWalletID: some(b),
	})
	require.NoError(t, err)

	updated, err := f.ledger.UpdateTransaction(ctx, f.owner, tx.ID, TransactionPatch{Kind: omit.From(domain.TransactionKindExpense)})
	require.NoError(t, err)
	assert.False(t, updated.DestinationWalletID.Valid)
	assert.True(t, f.balance(t, a).Equal(amount("60.00")))
	assert.True(t, f.balance(t, b).IsZero())
}

func TestReversal_IgnoresFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "0.00")

	income, err := f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Description:    "Salary",
		Amount:         amount("50.00"),
		Kind:           domain.TransactionKindIncome,
		SourceWalletID: walletID,
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateTransaction(ctx, f.owner, expense(walletID, "50.00"))
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteTransaction(ctx, f.owner, income.ID))
	assert.True(t, f.balance(t, walletID).Equal(amount("-50.00")))
}

func TestUpdate_ReappliesWholeEffectOnNegativeWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "0.00")

	income, err := f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Description:    "Salary",
		Amount:         amount("50.00"),
		Kind:           domain.TransactionKindIncome,
		SourceWalletID: walletID,
	})
	require.NoError(t, err)
	spent, err := f.ledger.CreateTransaction(ctx, f.owner, expense(walletID, "50.00"))
	require.NoError(t, err)
	require.NoError(t, f.ledger.DeleteTransaction(ctx, f.owner, income.ID))

	// The expense is reversed and re-applied in full, so even a rename is checked against funds.
	_, err = f.ledger.UpdateTransaction(ctx, f.owner, spent.ID, TransactionPatch{Description: omit.From("Groceries")})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.True(t, f.balance(t, walletID).Equal(amount("-50.00")))

	_, err = f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Description:    "Refund",
		Amount:         amount("50.00"),
		Kind:           domain.TransactionKindIncome,
		SourceWalletID: walletID,
	})
	require.NoError(t, err)
	renamed, err := f.ledger.UpdateTransaction(ctx, f.owner, spent.ID, TransactionPatch{Description: omit.From("Groceries")})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", renamed.Description)
	assert.True(t, f.balance(t, walletID).IsZero())
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.wallet(t, "100.00")
	b := f.wallet(t, "100.00")

	tests := []struct {
		name  string
		input NewTransaction
		want  error
	}{
		{"zero amount", expense(a, "0"), domain.ErrInvalidAmount},
		{"negative amount", expense(a, "-5.00"), domain.ErrInvalidAmount},
		{"three decimal places", expense(a, "1.005"), domain.ErrInvalidAmount},
		{"unknown kind", NewTransaction{Amount: amount("1.00"), Kind: "REFUND", SourceWalletID: a}, domain.ErrInvalidKind},
		{"transfer without destination", NewTransaction{Amount: amount("1.00"), Kind: domain.TransactionKindTransfer, SourceWalletID: a}, domain.ErrInvalidTransfer},
		{"transfer to itself", NewTransaction{Amount: amount("1.00"), Kind: domain.TransactionKindTransfer, SourceWalletID: a, DestinationWalletID: some(a)}, domain.ErrInvalidTransfer},
		{"expense with destination", NewTransaction{Amount: amount("1.00"), Kind: domain.TransactionKindExpense, SourceWalletID: a, DestinationWalletID: some(b)}, domain.ErrInvalidTransfer},
		{"missing wallet", expense(uuid.Must(uuid.NewV4()), "1.00"), domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateTransaction(ctx, f.owner, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.True(t, f.balance(t, a).Equal(amount("100.00")))
	assert.True(t, f.balance(t, b).Equal(amount("100.00")))
}

func TestOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := uuid.Must(uuid.NewV4())
	mine := f.wallet(t, "100.00")
	theirs := f.walletFor(t, stranger, "100.00")
	theirCategory := f.category(t, stranger)

	_, err := f.ledger.CreateTransaction(ctx, f.owner, expense(theirs, "1.00"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.ledger.CreateTransaction(ctx, f.owner, NewTransaction{
		Amount:              amount("1.00"),
		Kind:                domain.TransactionKindTransfer,
		SourceWalletID:      mine,
		DestinationWalletID: some(theirs),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	categorized := expense(mine, "1.00")
	categorized.CategoryID = some(theirCategory)
	_, err = f.ledger.CreateTransaction(ctx, f.owner, categorized)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	tx, err := f.ledger.CreateTransaction(ctx, f.owner, expense(mine, "1.00"))
	require.NoError(t, err)

	_, err = f.ledger.GetTransaction(ctx, stranger, tx.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.ledger.UpdateTransaction(ctx, stranger, tx.ID, TransactionPatch{Description: omit.From("mine now")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.ledger.DeleteTransaction(ctx, stranger, tx.ID), domain.ErrForbidden)
	_, err = f.ledger.GetBalance(ctx, stranger, mine)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.ledger.GetTransaction(ctx, f.owner, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.balance(t, mine).Equal(amount("99.00")))
}

func TestGoalTracking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "1000.00")
	food := f.category(t, f.owner)
	travel := f.category(t, f.owner)
	goalID := f.goal(t, food, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	inWindow := expense(walletID, "42.50")
	inWindow.CategoryID = some(food)
	inWindow.Date = time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	tx, err := f.ledger.CreateTransaction(ctx, f.owner, inWindow)
	require.NoError(t, err)
	assert.True(t, f.goalAmount(t, goalID).Equal(amount("42.50")))

	outside := expense(walletID, "10.00")
	outside.CategoryID = some(food)
	outside.Date = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.ledger.CreateTransaction(ctx, f.owner, outside)
	require.NoError(t, err)

	otherCategory := expense(walletID, "10.00")
	otherCategory.CategoryID = some(travel)
	otherCategory.Date = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	_, err = f.ledger.CreateTransaction(ctx, f.owner, otherCategory)
	require.NoError(t, err)

	income := NewTransaction{
		Amount:         amount("10.00"),
		Kind:           domain.TransactionKindIncome,
		SourceWalletID: walletID,
		CategoryID:     some(food),
		Date:           time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	_, err = f.ledger.CreateTransaction(ctx, f.owner, income)
	require.NoError(t, err)

	assert.True(t, f.goalAmount(t, goalID).Equal(amount("42.50")))

	_, err = f.ledger.UpdateTransaction(ctx, f.owner, tx.ID, TransactionPatch{Date: omit.From(time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.True(t, f.goalAmount(t, goalID).IsZero())

	_, err = f.ledger.UpdateTransaction(ctx, f.owner, tx.ID, TransactionPatch{Date: omit.From(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))})
	require.NoError(t, err)
	assert.True(t, f.goalAmount(t, goalID).Equal(amount("42.50")))

	require.NoError(t, f.ledger.DeleteTransaction(ctx, f.owner, tx.ID))
	assert.True(t, f.goalAmount(t, goalID).IsZero())
}

func TestListTransactions_Paginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "100.00")

	for day := 1; day <= 5; day++ {
		in := expense(walletID, "1.00")
		in.Date = time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
		_, err := f.ledger.CreateTransaction(ctx, f.owner, in)
		require.NoError(t, err)
	}

	page, err := f.ledger.ListTransactions(ctx, f.owner, ListFilter{}, &Cursor{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	assert.Equal(t, 5, page.Transactions[0].Date.Day())
	require.NotNil(t, page.NextCursor)

	var days []int
	cursor := &Cursor{Limit: 2}
	for cursor != nil {
		page, err := f.ledger.ListTransactions(ctx, f.owner, ListFilter{}, cursor)
		require.NoError(t, err)
		for _, tx := range page.Transactions {
			days = append(days, tx.Date.Day())
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, []int{5, 4, 3, 2, 1}, days)

	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	page, err = f.ledger.ListTransactions(ctx, f.owner, ListFilter{From: &from, To: &to}, nil)
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)
	assert.Nil(t, page.NextCursor)
}

// signedTotal is the balance change the surviving transactions imply for walletID.
func signedTotal(txs []*domain.Transaction, walletID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(Net(EffectsOf(tx))[walletID])
	}
	return total
}

func TestBalanceEqualsSurvivingEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wallets := []uuid.UUID{f.wallet(t, "500.00"), f.wallet(t, "500.00"), f.wallet(t, "500.00")}
	kinds := []domain.TransactionKind{domain.TransactionKindIncome, domain.TransactionKindExpense, domain.TransactionKindTransfer}
	rng := rand.New(rand.NewPCG(7, 11))

	var live []uuid.UUID
	randomInput := func() NewTransaction {
		source := wallets[rng.IntN(len(wallets))]
		in := NewTransaction{
			Description:    "random",
			Amount:         decimal.New(int64(rng.IntN(20000)+1), -2),
			Kind:           kinds[rng.IntN(len(kinds))],
			SourceWalletID: source,
		}
		if in.Kind == domain.TransactionKindTransfer {
			destination := wallets[(rng.IntN(len(wallets)-1)+1+indexOf(wallets, source))%len(wallets)]
			in.DestinationWalletID = some(destination)
		}
		return in
	}

	for step := 0; step < 300; step++ {
		switch op := rng.IntN(3); {
		case op == 0 || len(live) == 0:
			tx, err := f.ledger.CreateTransaction(ctx, f.owner, randomInput())
			if err == nil {
				live = append(live, tx.ID)
			} else {
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			}
		case op == 1:
			in := randomInput()
			_, err := f.ledger.UpdateTransaction(ctx, f.owner, live[rng.IntN(len(live))], TransactionPatch{
				Amount:              omit.From(in.Amount),
				Kind:                omit.From(in.Kind),
				SourceWalletID:      omit.From(in.SourceWalletID),
				DestinationWalletID: omit.From(in.DestinationWalletID),
			})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			}
		default:
			i := rng.IntN(len(live))
			require.NoError(t, f.ledger.DeleteTransaction(ctx, f.owner, live[i]))
			live = append(live[:i], live[i+1:]...)
		}
	}

	all, err := f.store.Read().Transactions.List(ctx, &transaction.Filter{OwnerID: f.owner})
	require.NoError(t, err)
	require.Len(t, all, len(live))
	for _, walletID := range wallets {
		want := amount("500.00").Add(signedTotal(all, walletID))
		got := f.balance(t, walletID)
		assert.True(t, want.Equal(got), "wallet %s: want %s got %s\n%s", walletID, want, got, spew.Sdump(all))
	}
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

func TestConcurrentExpenses_NoLostUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	walletID := f.wallet(t, "100.00")

	delegator := operator.NewOperatorDelegator(f.store, 8)
	delegator.Start()
	defer delegator.Stop()
	l := New(f.store, delegator, events.Noop{}, f.ledger.logger).WithClock(func() time.Time { return today })

	var wg sync.WaitGroup
	errs := make([]error, 150)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = l.CreateTransaction(ctx, f.owner, expense(walletID, "1.00"))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 100, succeeded)
	assert.True(t, f.balance(t, walletID).IsZero(), fmt.Sprintf("balance %s", f.balance(t, walletID)))
}
