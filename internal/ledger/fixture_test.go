package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

var today = time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type fixture struct {
	store     *memory.Store
	ledger    *Ledger
	publisher *recordingPublisher
	owner     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	publisher := &recordingPublisher{}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	l := New(store, operator.Inline{Storage: store}, publisher, logger).WithClock(func() time.Time { return today })
	return &fixture{store: store, ledger: l, publisher: publisher, owner: uuid.Must(uuid.NewV4())}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) walletFor(t *testing.T, owner uuid.UUID, balance string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	w, err := f.store.Write(ctx)
	require.NoError(t, err)
	id := uuid.Must(uuid.NewV4())
	require.NoError(t, w.Wallets.Insert(ctx, &domain.Wallet{
		ID:      id,
		OwnerID: owner,
		Name:    "Wallet " + id.String()[:8],
		Kind:    domain.WalletKindChecking,
		Balance: amount(balance),
	}))
	require.NoError(t, w.Commit())
	return id
}

func (f *fixture) wallet(t *testing.T, balance string) uuid.UUID {
	return f.walletFor(t, f.owner, balance)
}

func (f *fixture) category(t *testing.T, owner uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	w, err := f.store.Write(ctx)
	require.NoError(t, err)
	id := uuid.Must(uuid.NewV4())
	require.NoError(t, w.Categories.Insert(ctx, &domain.Category{ID: id, OwnerID: owner, Name: "Groceries"}))
	require.NoError(t, w.Commit())
	return id
}

func (f *fixture) goal(t *testing.T, categoryID uuid.UUID, start, end time.Time) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	w, err := f.store.Write(ctx)
	require.NoError(t, err)
	id := uuid.Must(uuid.NewV4())
	require.NoError(t, w.Goals.Insert(ctx, &domain.Goal{
		ID:           id,
		OwnerID:      f.owner,
		Name:         "Food budget",
		TargetAmount: amount("200.00"),
		Period:       domain.GoalPeriodMonthly,
		StartDate:    start,
		EndDate:      end,
		CategoryID:   uuid.NullUUID{UUID: categoryID, Valid: true},
		Active:       true,
	}))
	require.NoError(t, w.Commit())
	return id
}

func (f *fixture) balance(t *testing.T, walletID uuid.UUID) decimal.Decimal {
	t.Helper()
	balance, err := f.ledger.GetBalance(context.Background(), f.owner, walletID)
	require.NoError(t, err)
	return balance
}

func (f *fixture) goalAmount(t *testing.T, goalID uuid.UUID) decimal.Decimal {
	t.Helper()
	g, err := f.store.Read().Goals.FindByID(context.Background(), goalID)
	require.NoError(t, err)
	return g.CurrentAmount
}

func expense(walletID uuid.UUID, value string) NewTransaction {
	return NewTransaction{
		Description:    "Groceries",
		Amount:         amount(value),
		Kind:           domain.TransactionKindExpense,
		SourceWalletID: walletID,
	}
}

func some(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}
