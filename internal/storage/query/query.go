// Package query holds the bob helpers shared by the postgres table implementations.
package query

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// One runs q and maps the single resulting row onto T by its db tags.
func One[T any](ctx context.Context, exec bob.Executor, q bob.Query) (T, error) {
	row, err := bob.One(ctx, exec, q, scan.StructMapper[T]())
	if errors.Is(err, sql.ErrNoRows) {
		return row, domain.ErrNotFound
	}
	return row, err
}

// All runs q and maps every resulting row onto T.
func All[T any](ctx context.Context, exec bob.Executor, q bob.Query) ([]T, error) {
	return bob.All(ctx, exec, q, scan.StructMapper[T]())
}

// Count runs a single-column integer query such as count(*).
func Count(ctx context.Context, exec bob.Executor, q bob.Query) (int, error) {
	n, err := bob.One(ctx, exec, q, scan.SingleColumnMapper[int64])
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Sum runs a single-column numeric aggregate.
func Sum(ctx context.Context, exec bob.Executor, q bob.Query) (decimal.Decimal, error) {
	return bob.One(ctx, exec, q, scan.SingleColumnMapper[decimal.Decimal])
}

// Affect runs a write query and reports ErrNotFound when no row was touched.
func Affect(ctx context.Context, exec bob.Executor, q bob.Query) error {
	res, err := bob.Exec(ctx, exec, q)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Is compares a quoted column against a bound argument.
func Is(column string, value any) bob.Expression {
	return psql.Quote(column).EQ(psql.Arg(value))
}

// ByID is shorthand for the primary key predicate every table uses.
func ByID(id uuid.UUID) bob.Expression {
	return Is("id", id)
}

// NullDate converts an optional day to its column value.
func NullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// DateOf converts a nullable column back to an optional day.
func DateOf(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	day := domain.Day(t.Time)
	return &day
}
