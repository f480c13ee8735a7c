package domain

import "errors"

// Error taxonomy shared by every ledger component. Callers classify with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidTransfer   = errors.New("invalid transfer")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInUse             = errors.New("still referenced")
)
