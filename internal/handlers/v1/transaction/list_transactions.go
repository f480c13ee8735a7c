package transaction

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// ListTransactionsCursor represents a pagination cursor in request and response bodies.
// It bundles position, limit, and maxCreationTime so subsequent pages use consistent parameters.
type ListTransactionsCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Upper bound on created_at locked in from the first page"`
}

// ListTransactionsFilter narrows the listing. Empty fields do not filter.
type ListTransactionsFilter struct {
	WalletID   string `json:"walletID,omitempty" doc:"Only transactions touching this wallet"`
	CategoryID string `json:"categoryID,omitempty" doc:"Only transactions in this category"`
	Kind       string `json:"kind,omitempty" doc:"Only transactions of this kind"`
	From       string `json:"from,omitempty" doc:"Earliest date (YYYY-MM-DD), inclusive"`
	To         string `json:"to,omitempty" doc:"Latest date (YYYY-MM-DD), inclusive"`
}

// ListTransactionsBody is the request body for listing transactions.
type ListTransactionsBody struct {
	Filter ListTransactionsFilter  `json:"filter,omitempty" doc:"Optional filters"`
	Cursor *ListTransactionsCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

// ListTransactionsInput is the Huma input for listing transactions.
type ListTransactionsInput struct {
	OwnerHeader
	Body ListTransactionsBody
}

// ListTransactionsResponseBody is the response body for listing transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction           `json:"transactions" doc:"Page of transactions, newest date first"`
	NextCursor   *ListTransactionsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

type transactionLister interface {
	ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ledger.ListFilter, cursor *ledger.Cursor) (*ledger.Page, error)
}

// ListTransactionsHandler handles POST /v1/transactions/list.
type ListTransactionsHandler struct {
	Ledger transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{Ledger: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transactions/list",
		Summary:     "List transactions",
		Description: "Returns a paginated list of the owner's transactions using cursor-based pagination.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseFilter(in ListTransactionsFilter) (ledger.ListFilter, error) {
	var filter ledger.ListFilter
	if in.WalletID != "" {
		id, err := apierror.UUID("walletID", in.WalletID)
		if err != nil {
			return filter, err
		}
		filter.WalletID = &id
	}
	if in.CategoryID != "" {
		id, err := apierror.UUID("categoryID", in.CategoryID)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = &id
	}
	if in.Kind != "" {
		kind, err := domain.ParseTransactionKind(in.Kind)
		if err != nil {
			return filter, apierror.From(err, "invalid kind")
		}
		filter.Kind = &kind
	}
	if in.From != "" {
		from, err := apierror.Date("from", in.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if in.To != "" {
		to, err := apierror.Date("to", in.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	return filter, nil
}

// parseListTransactionsInput parses and validates the API input.
// When a cursor is provided, limit and maxCreationTime come from it.
// Without a cursor, the ledger uses its default limit.
func parseListTransactionsInput(input *ListTransactionsInput) (ledger.ListFilter, *ledger.Cursor, error) {
	filter, err := parseFilter(input.Body.Filter)
	if err != nil {
		return ledger.ListFilter{}, nil, err
	}
	if input.Body.Cursor == nil {
		return filter, nil, nil
	}

	if input.Body.Cursor.Position < 0 {
		return ledger.ListFilter{}, nil, huma.NewError(http.StatusBadRequest, "cursor position must be non-negative")
	}

	maxCreationTime, parseErr := time.Parse(time.RFC3339, input.Body.Cursor.MaxCreationTime)
	if parseErr != nil {
		return ledger.ListFilter{}, nil, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", parseErr)
	}

	return filter, &ledger.Cursor{
		Position:        input.Body.Cursor.Position,
		Limit:           input.Body.Cursor.Limit,
		MaxCreationTime: maxCreationTime,
	}, nil
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	filter, requestCursor, err := parseListTransactionsInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listTransactionsMs")
	}
	page, err := h.Ledger.ListTransactions(ctx, ownerID, filter, requestCursor)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, apierror.From(err, "failed to list transactions")
	}

	if logData != nil {
		logData.AddData("transactionCount", len(page.Transactions))
	}

	resp := ListTransactionsResponseBody{
		Transactions: make([]Transaction, len(page.Transactions)),
	}
	for i, tx := range page.Transactions {
		resp.Transactions[i] = fromDomain(tx)
	}

	if page.NextCursor != nil {
		resp.NextCursor = &ListTransactionsCursor{
			Position:        page.NextCursor.Position,
			Limit:           page.NextCursor.Limit,
			MaxCreationTime: page.NextCursor.MaxCreationTime.Format(time.RFC3339Nano),
		}
	}

	return &ListTransactionsOutput{Body: resp}, nil
}
