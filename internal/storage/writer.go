package storage

import (
	"context"
)

// Tx is the commit boundary behind a Writer. bob.Tx satisfies it, as does the memory backend.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Writer is a unit of work: every table access goes through the same transaction.
type Writer struct {
	*Tables
	tx Tx
}

func NewWriter(tx Tx, tables *Tables) *Writer {
	return &Writer{
		Tables: tables,
		tx:     tx,
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
