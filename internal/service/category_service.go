package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// CategoryService handles category business logic.
type CategoryService struct {
	storage   storage.Storage
	processor operator.Processor
	now       func() time.Time
}

func NewCategoryService(s storage.Storage, p operator.Processor) *CategoryService {
	return &CategoryService{storage: s, processor: p, now: time.Now}
}

func findCategory(ctx context.Context, tables *storage.Tables, ownerID, id uuid.UUID) (*domain.Category, error) {
	c, err := tables.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	return domain.RequireOwned(c, ownerID)
}

func (s *CategoryService) CreateCategory(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Category, error) {
	c := &domain.Category{
		ID:        uuid.Must(uuid.NewV7()),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, writer *storage.Writer) error {
		return writer.Categories.Insert(ctx, c)
	}))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*domain.Category, error) {
	return findCategory(ctx, s.storage.Read(), ownerID, id)
}

func (s *CategoryService) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	return s.storage.Read().Categories.ListByOwner(ctx, ownerID)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, ownerID, id uuid.UUID, patch CategoryPatch) (*domain.Category, error) {
	var updated *domain.Category
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, writer *storage.Writer) error {
		c, err := findCategory(ctx, writer.Tables, ownerID, id)
		if err != nil {
			return err
		}
		c.Name = patch.Name.GetOr(c.Name)
		if err := writer.Categories.Update(ctx, c); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		updated = c
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes a category no transaction, goal or recurring definition refers to.
func (s *CategoryService) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, writer *storage.Writer) error {
		if _, err := findCategory(ctx, writer.Tables, ownerID, id); err != nil {
			return err
		}

		counters := []func(context.Context, uuid.UUID) (int, error){
			writer.Transactions.CountByCategory,
			writer.Goals.CountByCategory,
			writer.Recurring.CountByCategory,
		}
		for _, count := range counters {
			n, err := count(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("category %s is still referenced: %w", id, domain.ErrInUse)
			}
		}

		return writer.Categories.Delete(ctx, id)
	}))
}
