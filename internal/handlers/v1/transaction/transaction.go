package transaction

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID                  string `json:"id" doc:"Transaction UUID"`
	Description         string `json:"description" doc:"Free-text description"`
	Amount              string `json:"amount" doc:"Decimal amount, always positive"`
	Kind                string `json:"kind" doc:"INCOME, EXPENSE or TRANSFER"`
	Date                string `json:"date" doc:"Transaction date (YYYY-MM-DD)"`
	SourceWalletID      string `json:"sourceWalletID" doc:"Wallet UUID the effect applies to, or the transfer source"`
	DestinationWalletID string `json:"destinationWalletID,omitempty" doc:"Transfer destination wallet UUID"`
	CategoryID          string `json:"categoryID,omitempty" doc:"Category UUID"`
	CreatedAt           string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromDomain(tx *domain.Transaction) Transaction {
	return Transaction{
		ID:                  tx.ID.String(),
		Description:         tx.Description,
		Amount:              tx.Amount.StringFixed(domain.MoneyPlaces),
		Kind:                string(tx.Kind),
		Date:                apierror.FormatDate(tx.Date),
		SourceWalletID:      tx.SourceWalletID.String(),
		DestinationWalletID: apierror.FormatOptionalID(tx.DestinationWalletID),
		CategoryID:          apierror.FormatOptionalID(tx.CategoryID),
		CreatedAt:           tx.CreatedAt.Format(time.RFC3339),
	}
}

type OwnerHeader struct {
	OwnerID string `header:"X-Owner-ID" required:"true" doc:"Owner UUID resolved by the authenticating proxy"`
}

// Service is everything the transaction endpoints need from the ledger.
type Service interface {
	transactionCreator
	transactionLister
	transactionEditor
}

// Register wires every transaction endpoint against svc.
func Register(api huma.API, svc Service) {
	NewCreateTransactionHandler(svc).Register(api)
	NewListTransactionsHandler(svc).Register(api)
	NewTransactionHandler(svc).Register(api)
}
