package wallet

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Wallet is the API response model for a wallet.
type Wallet struct {
	ID        string `json:"id" doc:"Wallet UUID"`
	Name      string `json:"name" doc:"Wallet name"`
	Kind      string `json:"kind" doc:"CHECKING, SAVINGS, CASH or OTHER"`
	Balance   string `json:"balance" doc:"Decimal balance"`
	CreatedAt string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromDomain(w *domain.Wallet) Wallet {
	return Wallet{
		ID:        w.ID.String(),
		Name:      w.Name,
		Kind:      string(w.Kind),
		Balance:   w.Balance.StringFixed(domain.MoneyPlaces),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

type walletService interface {
	CreateWallet(ctx context.Context, ownerID uuid.UUID, in service.NewWallet) (*domain.Wallet, error)
	GetWallet(ctx context.Context, ownerID, id uuid.UUID) (*domain.Wallet, error)
	ListWallets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Wallet, error)
	UpdateWallet(ctx context.Context, ownerID, id uuid.UUID, patch service.WalletPatch) (*domain.Wallet, error)
	DeleteWallet(ctx context.Context, ownerID, id uuid.UUID) error
}

// Handler serves the /v1/wallets endpoints.
type Handler struct {
	WalletService walletService
}

func NewHandler(svc walletService) *Handler {
	return &Handler{WalletService: svc}
}

func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-wallet",
		Method:        http.MethodPost,
		Path:          "/v1/wallets",
		Summary:       "Create wallet",
		Description:   "Opens a wallet with a non-negative initial balance.",
		Tags:          []string{"Wallets"},
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "list-wallets",
		Method:      http.MethodGet,
		Path:        "/v1/wallets",
		Summary:     "List wallets",
		Tags:        []string{"Wallets"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "get-wallet",
		Method:      http.MethodGet,
		Path:        "/v1/wallets/{id}",
		Summary:     "Get wallet",
		Description: "Returns the wallet with its current balance.",
		Tags:        []string{"Wallets"},
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "update-wallet",
		Method:      http.MethodPatch,
		Path:        "/v1/wallets/{id}",
		Summary:     "Update wallet",
		Description: "Renames or re-kinds a wallet. The balance only changes through transactions.",
		Tags:        []string{"Wallets"},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID:   "delete-wallet",
		Method:        http.MethodDelete,
		Path:          "/v1/wallets/{id}",
		Summary:       "Delete wallet",
		Description:   "Deletes a wallet that no transaction or recurring definition references.",
		Tags:          []string{"Wallets"},
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}
