package goal

import (
	"context"
	"fmt"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// NewGoal is the input for creating a goal.
type NewGoal struct {
	Name         string
	TargetAmount decimal.Decimal
	Period       domain.GoalPeriod
	StartDate    time.Time
	EndDate      time.Time
	CategoryID   uuid.NullUUID
}

// Patch carries the fields of a goal update; unset fields keep their value.
type Patch struct {
	Name         omit.Val[string]
	TargetAmount omit.Val[decimal.Decimal]
	Period       omit.Val[domain.GoalPeriod]
	StartDate    omit.Val[time.Time]
	EndDate      omit.Val[time.Time]
	CategoryID   omit.Val[uuid.NullUUID]
}

type Service struct {
	storage   storage.Storage
	processor operator.Processor
	now       func() time.Time
}

func NewService(s storage.Storage, p operator.Processor) *Service {
	return &Service{storage: s, processor: p, now: time.Now}
}

func validate(g *domain.Goal) error {
	if err := domain.ValidateAmount(g.TargetAmount); err != nil {
		return err
	}
	if !g.Period.Valid() {
		return fmt.Errorf("period %q: %w", g.Period, domain.ErrInvalidPeriod)
	}
	if g.StartDate.After(g.EndDate) {
		return fmt.Errorf("start %s after end %s: %w",
			g.StartDate.Format(time.DateOnly), g.EndDate.Format(time.DateOnly), domain.ErrInvalidPeriod)
	}
	return nil
}

func requireCategory(ctx context.Context, tables *storage.Tables, ownerID uuid.UUID, categoryID uuid.NullUUID) error {
	if !categoryID.Valid {
		return nil
	}
	c, err := tables.Categories.FindByID(ctx, categoryID.UUID)
	if err != nil {
		return fmt.Errorf("category %s: %w", categoryID.UUID, err)
	}
	_, err = domain.RequireOwned(c, ownerID)
	return err
}

// Find loads a goal and checks it belongs to ownerID.
func Find(ctx context.Context, tables *storage.Tables, ownerID, id uuid.UUID) (*domain.Goal, error) {
	g, err := tables.Goals.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", id, err)
	}
	return domain.RequireOwned(g, ownerID)
}

// findForUpdate is Find with the goal row locked, for writes that recompute the current amount.
func findForUpdate(ctx context.Context, tables *storage.Tables, ownerID, id uuid.UUID) (*domain.Goal, error) {
	g, err := tables.Goals.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", id, err)
	}
	return domain.RequireOwned(g, ownerID)
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in NewGoal) (*domain.Goal, error) {
	now := s.now().UTC()
	g := &domain.Goal{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       ownerID,
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: decimal.Zero,
		Period:        in.Period,
		StartDate:     domain.Day(in.StartDate),
		EndDate:       domain.Day(in.EndDate),
		CategoryID:    in.CategoryID,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := validate(g); err != nil {
		return nil, err
	}

	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		if err := requireCategory(ctx, w.Tables, ownerID, g.CategoryID); err != nil {
			return err
		}
		if err := w.Goals.Insert(ctx, g); err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		return Recompute(ctx, w.Tables, g)
	}))
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Goal, error) {
	return Find(ctx, s.storage.Read(), ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.Goal, error) {
	return s.storage.Read().Goals.ListByOwner(ctx, ownerID, activeOnly)
}

// Update applies patch and recomputes the accumulated amount over the possibly new window.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (*domain.Goal, error) {
	var updated *domain.Goal
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		g, err := findForUpdate(ctx, w.Tables, ownerID, id)
		if err != nil {
			return err
		}

		g.Name = patch.Name.GetOr(g.Name)
		g.TargetAmount = patch.TargetAmount.GetOr(g.TargetAmount)
		g.Period = patch.Period.GetOr(g.Period)
		if start, ok := patch.StartDate.Get(); ok {
			g.StartDate = domain.Day(start)
		}
		if end, ok := patch.EndDate.Get(); ok {
			g.EndDate = domain.Day(end)
		}
		if categoryID, ok := patch.CategoryID.Get(); ok {
			if err := requireCategory(ctx, w.Tables, ownerID, categoryID); err != nil {
				return err
			}
			g.CategoryID = categoryID
		}
		if err := validate(g); err != nil {
			return err
		}

		g.UpdatedAt = s.now().UTC()
		if err := w.Goals.Update(ctx, g); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		if err := Recompute(ctx, w.Tables, g); err != nil {
			return err
		}
		updated = g
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetActive toggles whether the goal is reported as active. It does not affect recomputation.
func (s *Service) SetActive(ctx context.Context, ownerID, id uuid.UUID, active bool) (*domain.Goal, error) {
	var updated *domain.Goal
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		g, err := Find(ctx, w.Tables, ownerID, id)
		if err != nil {
			return err
		}
		g.Active = active
		g.UpdatedAt = s.now().UTC()
		if err := w.Goals.Update(ctx, g); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		updated = g
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Refresh recomputes a single goal on demand.
func (s *Service) Refresh(ctx context.Context, ownerID, id uuid.UUID) (*domain.Goal, error) {
	var refreshed *domain.Goal
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		g, err := findForUpdate(ctx, w.Tables, ownerID, id)
		if err != nil {
			return err
		}
		if err := Recompute(ctx, w.Tables, g); err != nil {
			return err
		}
		refreshed = g
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return refreshed, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		if _, err := Find(ctx, w.Tables, ownerID, id); err != nil {
			return err
		}
		return w.Goals.Delete(ctx, id)
	}))
}
