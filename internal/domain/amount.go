package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of implied decimal places of every amount and balance.
const MoneyPlaces = 2

// ValidateAmount accepts strictly positive amounts with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount %s must be greater than zero: %w", amount, ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(MoneyPlaces)) {
		return fmt.Errorf("amount %s has more than %d decimal places: %w", amount, MoneyPlaces, ErrInvalidAmount)
	}
	return nil
}
