package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

// CreateTransactionBody is the request body for creating a transaction.
type CreateTransactionBody struct {
	Description         string `json:"description,omitempty" doc:"Free-text description"`
	Amount              string `json:"amount" required:"true" doc:"Decimal amount greater than zero"`
	Kind                string `json:"kind" required:"true" doc:"INCOME, EXPENSE or TRANSFER"`
	Date                string `json:"date,omitempty" doc:"Transaction date (YYYY-MM-DD), defaults to today"`
	SourceWalletID      string `json:"sourceWalletID" required:"true" format:"uuid" doc:"Wallet UUID"`
	DestinationWalletID string `json:"destinationWalletID,omitempty" doc:"Destination wallet UUID, TRANSFER only"`
	CategoryID          string `json:"categoryID,omitempty" doc:"Category UUID"`
}

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	OwnerHeader
	Body CreateTransactionBody
}

// CreateTransactionOutput is the Huma output for creating a transaction.
type CreateTransactionOutput struct {
	Body Transaction
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, ownerID uuid.UUID, in ledger.NewTransaction) (*domain.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transactions.
type CreateTransactionHandler struct {
	Ledger transactionCreator
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{Ledger: svc}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transaction",
		Method:        http.MethodPost,
		Path:          "/v1/transactions",
		Summary:       "Create transaction",
		Description:   "Records a transaction and applies its balance effect atomically.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

// parseCreateTransactionInput converts the request body into ledger input. Domain rules such as
// the amount sign or transfer shape are left to the ledger.
func parseCreateTransactionInput(input *CreateTransactionInput) (uuid.UUID, ledger.NewTransaction, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return uuid.Nil, ledger.NewTransaction{}, err
	}
	body := input.Body

	in := ledger.NewTransaction{Description: body.Description}
	if in.Amount, err = apierror.Amount("amount", body.Amount); err != nil {
		return uuid.Nil, ledger.NewTransaction{}, err
	}
	if in.Kind, err = domain.ParseTransactionKind(body.Kind); err != nil {
		return uuid.Nil, ledger.NewTransaction{}, apierror.From(err, "invalid kind")
	}
	if body.Date != "" {
		if in.Date, err = apierror.Date("date", body.Date); err != nil {
			return uuid.Nil, ledger.NewTransaction{}, err
		}
	}
	if in.SourceWalletID, err = apierror.UUID("sourceWalletID", body.SourceWalletID); err != nil {
		return uuid.Nil, ledger.NewTransaction{}, err
	}
	if in.DestinationWalletID, err = apierror.OptionalUUID("destinationWalletID", body.DestinationWalletID); err != nil {
		return uuid.Nil, ledger.NewTransaction{}, err
	}
	if in.CategoryID, err = apierror.OptionalUUID("categoryID", body.CategoryID); err != nil {
		return uuid.Nil, ledger.NewTransaction{}, err
	}
	return ownerID, in, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	ownerID, in, err := parseCreateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	tx, err := h.Ledger.CreateTransaction(ctx, ownerID, in)
	if err != nil {
		return nil, apierror.From(err, "failed to create transaction")
	}
	return &CreateTransactionOutput{Body: fromDomain(tx)}, nil
}
