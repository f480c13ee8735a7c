package goal

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// IGoalTable defines the interface for goal storage operations.
// CurrentAmount is written only by UpdateCurrentAmount; Update leaves it alone.
// Callers recomputing CurrentAmount lock the goal rows first so concurrent recomputations serialize.
//
//go:generate mockery --name IGoalTable --output mock_IGoalTable.go
type IGoalTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.Goal, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Goal, error)
	ListByCategoriesForUpdate(ctx context.Context, ownerID uuid.UUID, categoryIDs []uuid.UUID) ([]*domain.Goal, error)
	Insert(ctx context.Context, goal *domain.Goal) error
	Update(ctx context.Context, goal *domain.Goal) error
	UpdateCurrentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}
