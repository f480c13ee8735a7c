package transaction

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

const tableName = "transactions"

var columns = []any{
	"id", "owner_id", "description", "amount", "kind", "transaction_date",
	"source_wallet_id", "destination_wallet_id", "category_id", "created_at", "updated_at",
}

type row struct {
	ID                  uuid.UUID       `db:"id"`
	OwnerID             uuid.UUID       `db:"owner_id"`
	Description         string          `db:"description"`
	Amount              decimal.Decimal `db:"amount"`
	Kind                string          `db:"kind"`
	TransactionDate     time.Time       `db:"transaction_date"`
	SourceWalletID      uuid.UUID       `db:"source_wallet_id"`
	DestinationWalletID uuid.NullUUID   `db:"destination_wallet_id"`
	CategoryID          uuid.NullUUID   `db:"category_id"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// Table provides access to the transactions table.
type Table struct {
	exec bob.Executor
}

var _ ITransactionTable = (*Table)(nil)

func NewTable(exec bob.Executor) *Table {
	return &Table{exec: exec}
}

func (t *Table) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r, err := query.One[row](ctx, t.exec, psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(query.ByID(id)),
	))
	if err != nil {
		return nil, err
	}
	return r.toTransaction(), nil
}

// List returns transactions matching the filter, newest date first.
func (t *Table) List(ctx context.Context, filter *Filter) ([]*domain.Transaction, error) {
	where := []bob.Expression{query.Is("owner_id", filter.OwnerID)}
	if filter.WalletID != nil {
		where = append(where, psql.Or(
			query.Is("source_wallet_id", *filter.WalletID),
			query.Is("destination_wallet_id", *filter.WalletID),
		))
	}
	if filter.CategoryID != nil {
		where = append(where, query.Is("category_id", *filter.CategoryID))
	}
	if filter.Kind != nil {
		where = append(where, query.Is("kind", string(*filter.Kind)))
	}
	if filter.From != nil {
		where = append(where, psql.Quote("transaction_date").GTE(psql.Arg(*filter.From)))
	}
	if filter.To != nil {
		where = append(where, psql.Quote("transaction_date").LTE(psql.Arg(*filter.To)))
	}
	if filter.MaxCreationTime != nil {
		where = append(where, psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime)))
	}

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.And(where...)),
		sm.OrderBy("transaction_date").Desc(),
		sm.OrderBy("created_at").Desc(),
		sm.OrderBy("id").Desc(),
	}
	if filter.Limit > 0 {
		queryMods = append(queryMods, sm.Limit(filter.Limit+1))
	}
	if filter.Offset > 0 {
		queryMods = append(queryMods, sm.Offset(filter.Offset))
	}

	rows, err := query.All[row](ctx, t.exec, psql.Select(queryMods...))
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Transaction, len(rows))
	for i, r := range rows {
		result[i] = r.toTransaction()
	}
	return result, nil
}

func (t *Table) Insert(ctx context.Context, tx *domain.Transaction) error {
	_, err := bob.Exec(ctx, t.exec, psql.Insert(
		im.Into(tableName,
			"id", "owner_id", "description", "amount", "kind", "transaction_date",
			"source_wallet_id", "destination_wallet_id", "category_id", "created_at", "updated_at"),
		im.Values(psql.Arg(
			tx.ID, tx.OwnerID, tx.Description, tx.Amount, string(tx.Kind), tx.Date,
			tx.SourceWalletID, tx.DestinationWalletID, tx.CategoryID, tx.CreatedAt, tx.UpdatedAt,
		)),
	))
	return err
}

func (t *Table) Update(ctx context.Context, tx *domain.Transaction) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("description").ToArg(tx.Description),
		um.SetCol("amount").ToArg(tx.Amount),
		um.SetCol("kind").ToArg(string(tx.Kind)),
		um.SetCol("transaction_date").ToArg(tx.Date),
		um.SetCol("source_wallet_id").ToArg(tx.SourceWalletID),
		um.SetCol("destination_wallet_id").ToArg(tx.DestinationWalletID),
		um.SetCol("category_id").ToArg(tx.CategoryID),
		um.SetCol("updated_at").ToArg(tx.UpdatedAt),
		um.Where(query.ByID(tx.ID)),
	))
}

func (t *Table) Delete(ctx context.Context, id uuid.UUID) error {
	return query.Affect(ctx, t.exec, psql.Delete(dm.From(tableName), dm.Where(query.ByID(id))))
}

// SumExpenses totals EXPENSE amounts for one owner and category dated within [start, end].
func (t *Table) SumExpenses(ctx context.Context, ownerID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	return query.Sum(ctx, t.exec, psql.Select(
		sm.Columns(psql.Raw("COALESCE(SUM(amount), 0)")),
		sm.From(tableName),
		sm.Where(psql.And(
			query.Is("owner_id", ownerID),
			query.Is("category_id", categoryID),
			query.Is("kind", string(domain.TransactionKindExpense)),
			psql.Quote("transaction_date").GTE(psql.Arg(start)),
			psql.Quote("transaction_date").LTE(psql.Arg(end)),
		)),
	))
}

func (t *Table) CountByWallet(ctx context.Context, walletID uuid.UUID) (int, error) {
	return query.Count(ctx, t.exec, psql.Select(
		sm.Columns(psql.Raw("count(*)")),
		sm.From(tableName),
		sm.Where(psql.Or(
			query.Is("source_wallet_id", walletID),
			query.Is("destination_wallet_id", walletID),
		)),
	))
}

func (t *Table) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	return query.Count(ctx, t.exec, psql.Select(
		sm.Columns(psql.Raw("count(*)")),
		sm.From(tableName),
		sm.Where(query.Is("category_id", categoryID)),
	))
}

func (r row) toTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:                  r.ID,
		OwnerID:             r.OwnerID,
		Description:         r.Description,
		Amount:              r.Amount,
		Kind:                domain.TransactionKind(r.Kind),
		Date:                domain.Day(r.TransactionDate),
		SourceWalletID:      r.SourceWalletID,
		DestinationWalletID: r.DestinationWalletID,
		CategoryID:          r.CategoryID,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}
