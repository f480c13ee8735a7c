package wallet

import (
	"context"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

type OwnerHeader struct {
	OwnerID string `header:"X-Owner-ID" required:"true" doc:"Owner UUID resolved by the authenticating proxy"`
}

type ByIDInput struct {
	OwnerHeader
	ID string `path:"id" doc:"Wallet UUID"`
}

type CreateWalletBody struct {
	Name           string `json:"name" required:"true" minLength:"1" doc:"Wallet name"`
	Kind           string `json:"kind" required:"true" doc:"CHECKING, SAVINGS, CASH or OTHER"`
	InitialBalance string `json:"initialBalance,omitempty" doc:"Decimal opening balance, defaults to 0"`
}

type CreateWalletInput struct {
	OwnerHeader
	Body CreateWalletBody
}

type UpdateWalletBody struct {
	Name *string `json:"name,omitempty" minLength:"1" doc:"New wallet name"`
	Kind *string `json:"kind,omitempty" doc:"New wallet kind"`
}

type UpdateWalletInput struct {
	ByIDInput
	Body UpdateWalletBody
}

type WalletOutput struct {
	Body Wallet
}

type ListWalletsOutput struct {
	Body struct {
		Wallets []Wallet `json:"wallets" doc:"Wallets ordered by name"`
	}
}

type DeleteWalletOutput struct{}

func (h *Handler) create(ctx context.Context, input *CreateWalletInput) (*WalletOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	kind, err := domain.ParseWalletKind(input.Body.Kind)
	if err != nil {
		return nil, apierror.From(err, "invalid kind")
	}
	balance := decimal.Zero
	if input.Body.InitialBalance != "" {
		if balance, err = apierror.Amount("initialBalance", input.Body.InitialBalance); err != nil {
			return nil, err
		}
	}

	w, err := h.WalletService.CreateWallet(ctx, ownerID, service.NewWallet{
		Name:           input.Body.Name,
		Kind:           kind,
		InitialBalance: balance,
	})
	if err != nil {
		return nil, apierror.From(err, "failed to create wallet")
	}
	return &WalletOutput{Body: fromDomain(w)}, nil
}

func (h *Handler) list(ctx context.Context, input *OwnerHeader) (*ListWalletsOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	wallets, err := h.WalletService.ListWallets(ctx, ownerID)
	if err != nil {
		return nil, apierror.From(err, "failed to list wallets")
	}
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("walletCount", len(wallets))
	}

	out := &ListWalletsOutput{}
	out.Body.Wallets = make([]Wallet, len(wallets))
	for i, w := range wallets {
		out.Body.Wallets[i] = fromDomain(w)
	}
	return out, nil
}

func (h *Handler) get(ctx context.Context, input *ByIDInput) (*WalletOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	id, err := apierror.UUID("id", input.ID)
	if err != nil {
		return nil, err
	}
	w, err := h.WalletService.GetWallet(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to get wallet")
	}
	return &WalletOutput{Body: fromDomain(w)}, nil
}

func (h *Handler) update(ctx context.Context, input *UpdateWalletInput) (*WalletOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	id, err := apierror.UUID("id", input.ID)
	if err != nil {
		return nil, err
	}

	var patch service.WalletPatch
	if input.Body.Name != nil {
		patch.Name = omit.From(*input.Body.Name)
	}
	if input.Body.Kind != nil {
		kind, err := domain.ParseWalletKind(*input.Body.Kind)
		if err != nil {
			return nil, apierror.From(err, "invalid kind")
		}
		patch.Kind = omit.From(kind)
	}

	w, err := h.WalletService.UpdateWallet(ctx, ownerID, id, patch)
	if err != nil {
		return nil, apierror.From(err, "failed to update wallet")
	}
	return &WalletOutput{Body: fromDomain(w)}, nil
}

func (h *Handler) delete(ctx context.Context, input *ByIDInput) (*DeleteWalletOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	id, err := apierror.UUID("id", input.ID)
	if err != nil {
		return nil, err
	}
	if err := h.WalletService.DeleteWallet(ctx, ownerID, id); err != nil {
		return nil, apierror.From(err, "failed to delete wallet")
	}
	return &DeleteWalletOutput{}, nil
}
