package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

// mockLedger is a mock for every ledger method the transaction endpoints use.
type mockLedger struct {
	mock.Mock
}

var _ Service = (*mockLedger)(nil)

func (m *mockLedger) CreateTransaction(ctx context.Context, ownerID uuid.UUID, in ledger.NewTransaction) (*domain.Transaction, error) {
	args := m.Called(ctx, ownerID, in)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockLedger) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ledger.ListFilter, cursor *ledger.Cursor) (*ledger.Page, error) {
	args := m.Called(ctx, ownerID, filter, cursor)
	page, _ := args.Get(0).(*ledger.Page)
	return page, args.Error(1)
}

func (m *mockLedger) GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, ownerID, id)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockLedger) UpdateTransaction(ctx context.Context, ownerID, id uuid.UUID, patch ledger.TransactionPatch) (*domain.Transaction, error) {
	args := m.Called(ctx, ownerID, id, patch)
	tx, _ := args.Get(0).(*domain.Transaction)
	return tx, args.Error(1)
}

func (m *mockLedger) DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

// newTestAPI registers every transaction endpoint against a humatest API and returns it.
func newTestAPI(t *testing.T, svc Service) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	Register(api, svc)
	return api
}

func ownerHeader(owner uuid.UUID) string {
	return "X-Owner-ID: " + owner.String()
}

func sampleTransaction(owner uuid.UUID) *domain.Transaction {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Transaction{
		ID:             uuid.Must(uuid.NewV4()),
		OwnerID:        owner,
		Description:    "Coffee",
		Amount:         decimal.RequireFromString("12.5"),
		Kind:           domain.TransactionKindExpense,
		Date:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		SourceWalletID: uuid.Must(uuid.NewV4()),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
