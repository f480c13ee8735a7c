package goal

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage/query"
)

const tableName = "goals"

var columns = []any{
	"id", "owner_id", "name", "target_amount", "current_amount", "period",
	"start_date", "end_date", "category_id", "active", "created_at", "updated_at",
}

type row struct {
	ID            uuid.UUID       `db:"id"`
	OwnerID       uuid.UUID       `db:"owner_id"`
	Name          string          `db:"name"`
	TargetAmount  decimal.Decimal `db:"target_amount"`
	CurrentAmount decimal.Decimal `db:"current_amount"`
	Period        string          `db:"period"`
	StartDate     time.Time       `db:"start_date"`
	EndDate       time.Time       `db:"end_date"`
	CategoryID    uuid.NullUUID   `db:"category_id"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Table provides access to the goals table.
type Table struct {
	exec bob.Executor
}

var _ IGoalTable = (*Table)(nil)

func NewTable(exec bob.Executor) *Table {
	return &Table{exec: exec}
}

func (t *Table) list(ctx context.Context, where ...bob.Expression) ([]*domain.Goal, error) {
	rows, err := query.All[row](ctx, t.exec, psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.And(where...)),
		sm.OrderBy("start_date").Desc(),
		sm.OrderBy("name").Asc(),
	))
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Goal, len(rows))
	for i, r := range rows {
		result[i] = r.toGoal()
	}
	return result, nil
}

func (t *Table) FindByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{sm.Columns(columns...), sm.From(tableName), sm.Where(query.ByID(id))}
	r, err := query.One[row](ctx, t.exec, psql.Select(mods...))
	if err != nil {
		return nil, err
	}
	return r.toGoal(), nil
}

func (t *Table) ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.Goal, error) {
	where := []bob.Expression{query.Is("owner_id", ownerID)}
	if activeOnly {
		where = append(where, query.Is("active", true))
	}
	return t.list(ctx, where...)
}

// FindByIDForUpdate locks the goal row until the surrounding transaction ends.
func (t *Table) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	r, err := query.One[row](ctx, t.exec, psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(query.ByID(id)),
		sm.ForUpdate(),
	))
	if err != nil {
		return nil, err
	}
	return r.toGoal(), nil
}

// ListByCategoriesForUpdate locks every goal of the owner tracking any of the categories, active or
// not. Rows are locked in id order so writers touching overlapping categories cannot deadlock.
func (t *Table) ListByCategoriesForUpdate(ctx context.Context, ownerID uuid.UUID, categoryIDs []uuid.UUID) ([]*domain.Goal, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	byCategory := make([]bob.Expression, len(categoryIDs))
	for i, id := range categoryIDs {
		byCategory[i] = query.Is("category_id", id)
	}

	rows, err := query.All[row](ctx, t.exec, psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.And(query.Is("owner_id", ownerID), psql.Or(byCategory...))),
		sm.OrderBy("id").Asc(),
		sm.ForUpdate(),
	))
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Goal, len(rows))
	for i, r := range rows {
		result[i] = r.toGoal()
	}
	return result, nil
}

func (t *Table) Insert(ctx context.Context, g *domain.Goal) error {
	_, err := bob.Exec(ctx, t.exec, psql.Insert(
		im.Into(tableName,
			"id", "owner_id", "name", "target_amount", "current_amount", "period",
			"start_date", "end_date", "category_id", "active", "created_at", "updated_at"),
		im.Values(psql.Arg(
			g.ID, g.OwnerID, g.Name, g.TargetAmount, g.CurrentAmount, string(g.Period),
			g.StartDate, g.EndDate, g.CategoryID, g.Active, g.CreatedAt, g.UpdatedAt,
		)),
	))
	return err
}

func (t *Table) Update(ctx context.Context, g *domain.Goal) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("name").ToArg(g.Name),
		um.SetCol("target_amount").ToArg(g.TargetAmount),
		um.SetCol("period").ToArg(string(g.Period)),
		um.SetCol("start_date").ToArg(g.StartDate),
		um.SetCol("end_date").ToArg(g.EndDate),
		um.SetCol("category_id").ToArg(g.CategoryID),
		um.SetCol("active").ToArg(g.Active),
		um.SetCol("updated_at").ToArg(g.UpdatedAt),
		um.Where(query.ByID(g.ID)),
	))
}

func (t *Table) UpdateCurrentAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("current_amount").ToArg(amount),
		um.Where(query.ByID(id)),
	))
}

func (t *Table) Delete(ctx context.Context, id uuid.UUID) error {
	return query.Affect(ctx, t.exec, psql.Delete(dm.From(tableName), dm.Where(query.ByID(id))))
}

func (t *Table) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	return query.Count(ctx, t.exec, psql.Select(
		sm.Columns(psql.Raw("count(*)")),
		sm.From(tableName),
		sm.Where(query.Is("category_id", categoryID)),
	))
}

func (r row) toGoal() *domain.Goal {
	return &domain.Goal{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Name:          r.Name,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
		Period:        domain.GoalPeriod(r.Period),
		StartDate:     domain.Day(r.StartDate),
		EndDate:       domain.Day(r.EndDate),
		CategoryID:    r.CategoryID,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
