package wallet

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

const tableName = "wallets"

var columns = []any{"id", "owner_id", "name", "kind", "balance", "created_at"}

type row struct {
	ID        uuid.UUID       `db:"id"`
	OwnerID   uuid.UUID       `db:"owner_id"`
	Name      string          `db:"name"`
	Kind      string          `db:"kind"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
}

// Table provides access to the wallets table.
type Table struct {
	exec bob.Executor
}

var _ IWalletTable = (*Table)(nil)

func NewTable(exec bob.Executor) *Table {
	return &Table{exec: exec}
}

func (t *Table) selectWallets(mods ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	base := []bob.Mod[*dialect.SelectQuery]{sm.Columns(columns...), sm.From(tableName)}
	return psql.Select(append(base, mods...)...)
}

func (t *Table) FindByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r, err := query.One[row](ctx, t.exec, t.selectWallets(sm.Where(query.ByID(id))))
	if err != nil {
		return nil, err
	}
	return r.toWallet(), nil
}

// FindByIDForUpdate locks the wallet row until the surrounding transaction ends.
func (t *Table) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r, err := query.One[row](ctx, t.exec, t.selectWallets(sm.Where(query.ByID(id)), sm.ForUpdate()))
	if err != nil {
		return nil, err
	}
	return r.toWallet(), nil
}

func (t *Table) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error) {
	rows, err := query.All[row](ctx, t.exec, t.selectWallets(
		sm.Where(query.Is("owner_id", ownerID)),
		sm.OrderBy("name").Asc(),
		sm.OrderBy("id").Asc(),
	))
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Wallet, len(rows))
	for i, r := range rows {
		result[i] = r.toWallet()
	}
	return result, nil
}

func (t *Table) Insert(ctx context.Context, w *domain.Wallet) error {
	_, err := bob.Exec(ctx, t.exec, psql.Insert(
		im.Into(tableName, "id", "owner_id", "name", "kind", "balance", "created_at"),
		im.Values(psql.Arg(w.ID, w.OwnerID, w.Name, string(w.Kind), w.Balance, w.CreatedAt)),
	))
	return err
}

func (t *Table) Update(ctx context.Context, w *domain.Wallet) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("name").ToArg(w.Name),
		um.SetCol("kind").ToArg(string(w.Kind)),
		um.Where(query.ByID(w.ID)),
	))
}

func (t *Table) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return query.Affect(ctx, t.exec, psql.Update(
		um.Table(tableName),
		um.SetCol("balance").ToArg(balance),
		um.Where(query.ByID(id)),
	))
}

func (t *Table) Delete(ctx context.Context, id uuid.UUID) error {
	return query.Affect(ctx, t.exec, psql.Delete(dm.From(tableName), dm.Where(query.ByID(id))))
}

func (r row) toWallet() *domain.Wallet {
	return &domain.Wallet{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Kind:      domain.WalletKind(r.Kind),
		Balance:   r.Balance,
		CreatedAt: r.CreatedAt,
	}
}
