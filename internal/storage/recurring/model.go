package recurring

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// IRecurringTable defines the interface for recurring definition storage operations.
//
//go:generate mockery --name IRecurringTable --output mock_IRecurringTable.go
type IRecurringTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RecurringDefinition, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecurringDefinition, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.RecurringDefinition, error)
	// ListDue returns ids of active definitions with next execution on or before today
	// whose end date, if any, has not passed.
	ListDue(ctx context.Context, today time.Time) ([]uuid.UUID, error)
	Insert(ctx context.Context, def *domain.RecurringDefinition) error
	Update(ctx context.Context, def *domain.RecurringDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByWallet(ctx context.Context, walletID uuid.UUID) (int, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}
