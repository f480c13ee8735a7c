package transaction

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

type TransactionIDInput struct {
	OwnerHeader
	ID string `path:"id" doc:"Transaction UUID"`
}

// UpdateTransactionBody holds the fields to change. Absent fields keep their value; an empty
// destinationWalletID or categoryID clears it.
type UpdateTransactionBody struct {
	Description         *string `json:"description,omitempty" doc:"New description"`
	Amount              *string `json:"amount,omitempty" doc:"New decimal amount"`
	Kind                *string `json:"kind,omitempty" doc:"New kind"`
	Date                *string `json:"date,omitempty" doc:"New date (YYYY-MM-DD)"`
	SourceWalletID      *string `json:"sourceWalletID,omitempty" doc:"New wallet UUID"`
	DestinationWalletID *string `json:"destinationWalletID,omitempty" doc:"New transfer destination UUID"`
	CategoryID          *string `json:"categoryID,omitempty" doc:"New category UUID"`
}

type UpdateTransactionInput struct {
	TransactionIDInput
	Body UpdateTransactionBody
}

type TransactionOutput struct {
	Body Transaction
}

type DeleteTransactionOutput struct{}

type transactionEditor interface {
	GetTransaction(ctx context.Context, ownerID, id uuid.UUID) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, ownerID, id uuid.UUID, patch ledger.TransactionPatch) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) error
}

// TransactionHandler handles GET, PATCH and DELETE on /v1/transactions/{id}.
type TransactionHandler struct {
	Ledger transactionEditor
}

func NewTransactionHandler(svc transactionEditor) *TransactionHandler {
	return &TransactionHandler{Ledger: svc}
}

func (h *TransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-transaction",
		Method:      http.MethodGet,
		Path:        "/v1/transactions/{id}",
		Summary:     "Get transaction",
		Tags:        []string{"Transactions"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPatch,
		Path:        "/v1/transactions/{id}",
		Summary:     "Update transaction",
		Description: "Reverts the stored balance effect and applies the updated one in a single unit of work.",
		Tags:        []string{"Transactions"},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "delete-transaction",
		Method:        http.MethodDelete,
		Path:          "/v1/transactions/{id}",
		Summary:       "Delete transaction",
		Description:   "Reverts the balance effect and removes the transaction.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}

func parseIDs(input *TransactionIDInput) (ownerID, id uuid.UUID, err error) {
	if ownerID, err = apierror.Owner(input.OwnerID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = apierror.UUID("id", input.ID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return ownerID, id, nil
}

func parsePatch(body UpdateTransactionBody) (ledger.TransactionPatch, error) {
	var patch ledger.TransactionPatch
	if body.Description != nil {
		patch.Description = omit.From(*body.Description)
	}
	if body.Amount != nil {
		amount, err := apierror.Amount("amount", *body.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = omit.From(amount)
	}
	if body.Kind != nil {
		kind, err := domain.ParseTransactionKind(*body.Kind)
		if err != nil {
			return patch, apierror.From(err, "invalid kind")
		}
		patch.Kind = omit.From(kind)
	}
	if body.Date != nil {
		date, err := apierror.Date("date", *body.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = omit.From(date)
	}
	if body.SourceWalletID != nil {
		id, err := apierror.UUID("sourceWalletID", *body.SourceWalletID)
		if err != nil {
			return patch, err
		}
		patch.SourceWalletID = omit.From(id)
	}
	if body.DestinationWalletID != nil {
		id, err := apierror.OptionalUUID("destinationWalletID", *body.DestinationWalletID)
		if err != nil {
			return patch, err
		}
		patch.DestinationWalletID = omit.From(id)
	}
	if body.CategoryID != nil {
		id, err := apierror.OptionalUUID("categoryID", *body.CategoryID)
		if err != nil {
			return patch, err
		}
		patch.CategoryID = omit.From(id)
	}
	return patch, nil
}

func (h *TransactionHandler) get(ctx context.Context, input *TransactionIDInput) (*TransactionOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	tx, err := h.Ledger.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to get transaction")
	}
	return &TransactionOutput{Body: fromDomain(tx)}, nil
}

func (h *TransactionHandler) update(ctx context.Context, input *UpdateTransactionInput) (*TransactionOutput, error) {
	ownerID, id, err := parseIDs(&input.TransactionIDInput)
	if err != nil {
		return nil, err
	}
	patch, err := parsePatch(input.Body)
	if err != nil {
		return nil, err
	}
	tx, err := h.Ledger.UpdateTransaction(ctx, ownerID, id, patch)
	if err != nil {
		return nil, apierror.From(err, "failed to update transaction")
	}
	return &TransactionOutput{Body: fromDomain(tx)}, nil
}

func (h *TransactionHandler) delete(ctx context.Context, input *TransactionIDInput) (*DeleteTransactionOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	if err := h.Ledger.DeleteTransaction(ctx, ownerID, id); err != nil {
		return nil, apierror.From(err, "failed to delete transaction")
	}
	return &DeleteTransactionOutput{}, nil
}
