package ledger

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
)

var (
	_ operator.IAction = (*CreateTransaction)(nil)
	_ operator.IAction = (*UpdateTransaction)(nil)
	_ operator.IAction = (*DeleteTransaction)(nil)
)

type CreateTransaction struct {
	OwnerID uuid.UUID
	Input   NewTransaction
	Now     time.Time

	Result *domain.Transaction
}

func (a *CreateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	tx, err := Create(ctx, writer, a.OwnerID, a.Input, a.Now)
	if err != nil {
		return err
	}
	a.Result = tx
	return nil
}

type UpdateTransaction struct {
	OwnerID       uuid.UUID
	TransactionID uuid.UUID
	Patch         TransactionPatch
	Now           time.Time

	Before *domain.Transaction
	Result *domain.Transaction
}

func (a *UpdateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	before, after, err := Update(ctx, writer, a.OwnerID, a.TransactionID, a.Patch, a.Now)
	if err != nil {
		return err
	}
	a.Before, a.Result = before, after
	return nil
}

type DeleteTransaction struct {
	OwnerID       uuid.UUID
	TransactionID uuid.UUID

	Result *domain.Transaction
}

func (a *DeleteTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	tx, err := Delete(ctx, writer, a.OwnerID, a.TransactionID)
	if err != nil {
		return err
	}
	a.Result = tx
	return nil
}
