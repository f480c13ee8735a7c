package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Transaction is a single recorded movement of money affecting one or two wallets.
// DestinationWalletID is valid iff Kind is TRANSFER.
type Transaction struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	Description         string
	Amount              decimal.Decimal
	Kind                TransactionKind
	Date                time.Time
	SourceWalletID      uuid.UUID
	DestinationWalletID uuid.NullUUID
	CategoryID          uuid.NullUUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (t *Transaction) Owner() uuid.UUID { return t.OwnerID }

// TouchesGoals reports whether the transaction can contribute to a goal's accumulated amount.
func (t *Transaction) TouchesGoals() bool {
	return t.Kind == TransactionKindExpense && t.CategoryID.Valid
}
