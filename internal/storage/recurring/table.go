package recurring

import (
	"context"
	"database/sql"
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
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/storage/query"
)

const tableName = "recurring_definitions"

var columns = []any{
	"id", "owner_id", "description", "amount", "kind", "frequency", "day_of_month",
	"start_date", "end_date", "next_execution", "active", "wallet_id", "category_id",
	"created_at", "updated_at",
}

type row struct {
	ID            uuid.UUID       `db:"id"`
	OwnerID       uuid.UUID       `db:"owner_id"`
	Description   string          `db:"description"`
	Amount        decimal.Decimal `db:"amount"`
	Kind          string          `db:"kind"`
	Frequency     string          `db:"frequency"`
	DayOfMonth    sql.NullInt32   `db:"day_of_month"`
	StartDate     time.Time       `db:"start_date"`
	EndDate       sql.NullTime    `db:"end_date"`
	NextExecution time.Time       `db:"next_execution"`
	Active        bool            `db:"active"`
	WalletID      uuid.UUID       `db:"wallet_id"`
	CategoryID    uuid.NullUUID   `db:"category_id"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Table provides access to the recurring_definitions table.
type Table struct {
	exec bob.Executor
}

var _ IRecurringTable = (*Table)(nil)

func NewTable(exec bob.Executor) *Table {
	return &Table{exec: exec}
}

func (t *Table) find(ctx context.Context, id uuid.UUID, mods ...bob.Mod[*dialect.SelectQuery]) (*domain.RecurringDefinition, error) {
	base := []bob.Mod[*dialect.SelectQuery]{sm.Columns(columns...), sm.From(tableName), sm.Where(query.ByID(id))}
	r, err := query.One[row](ctx, t.exec, psql.Select(append(base, mods...)...))
	if err != nil {
		return nil, err
	}
	return r.toDefinition(), nil
}

func (t *Table) FindByID(ctx context.Context, id uuid.UUID) (*domain.RecurringDefinition, error) {
	return t.find(ctx, id)
}

// FindByIDForUpdate locks the definition so concurrent executions of it serialize.
func (t *Table) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.RecurringDefinition, error) {
	return t.find(ctx, id, sm.ForUpdate())
}

func (t *Table) ListByOwner(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.RecurringDefinition, error) {
	where := []bob.Expression{query.Is("owner_id", ownerID)}
	if activeOnly {
		where = append(where, query.Is("active", true))
	}
	rows, err := query.All[row](ctx, t.exec, psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.And(where...)),
		sm.OrderBy("next_execution").Asc(),
		sm.OrderBy("id").Asc(),
	))
	if err != nil {
		return nil, err
	}
	result := make([]*domain.RecurringDefinition, len(rows))
	for i, r := range rows {
		result[i] = r.toDefinition()
	}
	return result, nil
}

func (t *Table) ListDue(ctx context.Context, today time.Time) ([]uuid.UUID, error) {
	return bob.All(ctx, t.exec, psql.Select(
		sm.Columns("id"),
		sm.From(tableName),
		sm.Where(psql.And(
			query.Is("active", true),
			psql.Quote("next_execution").LTE(psql.Arg(today)),
			psql.Or(
				psql.Quote("end_date").IsNull(),
				psql.Quote("end_date").GTE(psql.Arg(today)),
			),
		)),
		sm.OrderBy("next_execution").Asc(),
		sm.OrderBy("id").Asc(),
	), scan.SingleColumnMapper[uuid.UUID])
}

func (t *Table) Insert(ctx context.Context, d *domain.RecurringDefinition) error {
	_, err := bob.Exec(ctx, t.exec, psql.Insert(
		im.Into(tableName,
			"id", "owner_id", "description", "amount", "kind", "frequency", "day_of_month",
			"start_date", "end_date", "next_execution", "active", "wallet_id", "category_id",
			"created_at", "updated_at"),
		im.Values(psql.Arg(
			d.ID, d.OwnerID, d.Description, d.Amount, string(d.Kind), string(d.Frequency), dayOfMonth(d.DayOfMonth),
			d.StartDate, query.NullDate(d.EndDate), d.NextExecution, d.Active, d.WalletID, d.CategoryID,
			d.CreatedAt, d.UpdatedAt,
		)),
	))
	return err
}

func (t *Table) Update(ctx context.Context, d *domain.RecurringDefinition) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("description").ToArg(d.Description),
		um.SetCol("amount").ToArg(d.Amount),
		um.SetCol("kind").ToArg(string(d.Kind)),
		um.SetCol("frequency").ToArg(string(d.Frequency)),
		um.SetCol("day_of_month").ToArg(dayOfMonth(d.DayOfMonth)),
		um.SetCol("start_date").ToArg(d.StartDate),
		um.SetCol("end_date").ToArg(query.NullDate(d.EndDate)),
		um.SetCol("next_execution").ToArg(d.NextExecution),
		um.SetCol("active").ToArg(d.Active),
		um.SetCol("wallet_id").ToArg(d.WalletID),
		um.SetCol("category_id").ToArg(d.CategoryID),
		um.SetCol("updated_at").ToArg(d.UpdatedAt),
		um.Where(query.ByID(d.ID)),
	))
}

func (t *Table) Delete(ctx context.Context, id uuid.UUID) error {
	return query.Affect(ctx, t.exec, psql.Delete(dm.From(tableName), dm.Where(query.ByID(id))))
}

func (t *Table) CountByWallet(ctx context.Context, walletID uuid.UUID) (int, error) {
	return t.count(ctx, query.Is("wallet_id", walletID))
}

func (t *Table) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	return t.count(ctx, query.Is("category_id", categoryID))
}

func (t *Table) count(ctx context.Context, where bob.Expression) (int, error) {
	return query.Count(ctx, t.exec, psql.Select(
		sm.Columns(psql.Raw("count(*)")),
		sm.From(tableName),
		sm.Where(where),
	))
}

func dayOfMonth(day int) sql.NullInt32 {
	if day == 0 {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(day), Valid: true}
}

func (r row) toDefinition() *domain.RecurringDefinition {
	return &domain.RecurringDefinition{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Description:   r.Description,
		Amount:        r.Amount,
		Kind:          domain.TransactionKind(r.Kind),
		Frequency:     domain.Frequency(r.Frequency),
		DayOfMonth:    int(r.DayOfMonth.Int32),
		StartDate:     domain.Day(r.StartDate),
		EndDate:       query.DateOf(r.EndDate),
		NextExecution: domain.Day(r.NextExecution),
		Active:        r.Active,
		WalletID:      r.WalletID,
		CategoryID:    r.CategoryID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
