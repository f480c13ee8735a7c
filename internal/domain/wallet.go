package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Wallet is a named balance-holding account. Balance changes only through the ledger.
type Wallet struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Kind      WalletKind
	Balance   decimal.Decimal
	CreatedAt time.Time
}

func (w *Wallet) Owner() uuid.UUID { return w.OwnerID }

// Category groups transactions for goals and reporting.
type Category struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	CreatedAt time.Time
}

func (c *Category) Owner() uuid.UUID { return c.OwnerID }
