package category

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage/query"
)

const tableName = "categories"

type row struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Table provides access to the categories table.
type Table struct {
	exec bob.Executor
}

var _ ICategoryTable = (*Table)(nil)

func NewTable(exec bob.Executor) *Table {
	return &Table{exec: exec}
}

func (t *Table) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	r, err := query.One[row](ctx, t.exec, psql.Select(
		sm.Columns("id", "owner_id", "name", "created_at"),
		sm.From(tableName),
		sm.Where(query.ByID(id)),
	))
	if err != nil {
		return nil, err
	}
	return r.toCategory(), nil
}

func (t *Table) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Category, error) {
	rows, err := query.All[row](ctx, t.exec, psql.Select(
		sm.Columns("id", "owner_id", "name", "created_at"),
		sm.From(tableName),
		sm.Where(query.Is("owner_id", ownerID)),
		sm.OrderBy("name").Asc(),
	))
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Category, len(rows))
	for i, r := range rows {
		result[i] = r.toCategory()
	}
	return result, nil
}

func (t *Table) Insert(ctx context.Context, c *domain.Category) error {
	_, err := bob.Exec(ctx, t.exec, psql.Insert(
		im.Into(tableName, "id", "owner_id", "name", "created_at"),
		im.Values(psql.Arg(c.ID, c.OwnerID, c.Name, c.CreatedAt)),
	))
	return err
}

func (t *Table) Update(ctx context.Context, c *domain.Category) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("name").ToArg(c.Name),
		um.Where(query.ByID(c.ID)),
	))
}

func (t *Table) Delete(ctx context.Context, id uuid.UUID) error {
	return query.Affect(ctx, t.exec, psql.Delete(dm.From(tableName), dm.Where(query.ByID(id))))
}

func (r row) toCategory() *domain.Category {
	return &domain.Category{ID: r.ID, OwnerID: r.OwnerID, Name: r.Name, CreatedAt: r.CreatedAt}
}
