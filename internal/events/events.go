// Package events publishes ledger changes for downstream consumers such as reporting.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	RecurringExecuted  Type = "recurring.executed"
)

// Event is the JSON message published after a ledger change has been committed.
type Event struct {
	Type          Type            `json:"type"`
	OwnerID       uuid.UUID       `json:"ownerID"`
	TransactionID uuid.UUID       `json:"transactionID"`
	DefinitionID  *uuid.UUID      `json:"definitionID,omitempty"`
	WalletIDs     []uuid.UUID     `json:"walletIDs"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Emit publishes event and logs, rather than returns, any failure: the change it describes is
// already committed.
func Emit(ctx context.Context, publisher Publisher, logger *logrus.Logger, event Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"eventType":     event.Type,
			"transactionID": event.TransactionID,
		}).Warn("Events.Emit.publish failed")
	}
}
