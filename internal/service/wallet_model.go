package service

import (
	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// NewWallet is the input for creating a wallet.
type NewWallet struct {
	Name           string
	Kind           domain.WalletKind
	InitialBalance decimal.Decimal
}

// WalletPatch carries the editable wallet fields. Balance is not one of them.
type WalletPatch struct {
	Name omit.Val[string]
	Kind omit.Val[domain.WalletKind]
}

// CategoryPatch carries the editable category fields.
type CategoryPatch struct {
	Name omit.Val[string]
}
