package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// RecurringDefinition is a template that periodically materializes transactions.
// DayOfMonth is zero when no anchor is set and is only used for MONTHLY schedules.
type RecurringDefinition struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Kind          TransactionKind
	Frequency     Frequency
	DayOfMonth    int
	StartDate     time.Time
	EndDate       *time.Time
	NextExecution time.Time
	Active        bool
	WalletID      uuid.UUID
	CategoryID    uuid.NullUUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *RecurringDefinition) Owner() uuid.UUID { return r.OwnerID }

// Expired reports whether today lies past the definition's end date.
func (r *RecurringDefinition) Expired(today time.Time) bool {
	return r.EndDate != nil && today.After(*r.EndDate)
}
