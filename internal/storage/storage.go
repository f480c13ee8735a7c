package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/config"
)

// Storage is the persistence boundary of the ledger. Read exposes committed state; Write opens a
// unit of work whose changes become visible together on Commit or not at all.
type Storage interface {
	Read() *Tables
	Write(ctx context.Context) (*Writer, error)
	Close() error
}

// Postgres is the bob-backed Storage.
type Postgres struct {
	db     *sql.DB
	bobDB  bob.DB
	reader *Tables
}

var _ Storage = (*Postgres)(nil)

// ConnectionString builds the lib/pq DSN from configuration.
func ConnectionString(env *config.Config) string {
	return "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"
}

func NewPostgres(env *config.Config) (*Postgres, error) {
	db, err := sql.Open("postgres", ConnectionString(env))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresFromDB(db), nil
}

// NewPostgresFromDB wraps an already opened database handle.
func NewPostgresFromDB(db *sql.DB) *Postgres {
	bobDB := bob.NewDB(db)
	return &Postgres{
		db:     db,
		bobDB:  bobDB,
		reader: NewTables(bobDB),
	}
}

func (p *Postgres) Read() *Tables {
	return p.reader
}

func (p *Postgres) Write(ctx context.Context) (*Writer, error) {
	tx, err := p.bobDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return NewWriter(tx, NewTables(tx)), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
