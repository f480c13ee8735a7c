package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsers(t *testing.T) {
	kind, err := ParseTransactionKind(" transfer ")
	require.NoError(t, err)
	assert.Equal(t, TransactionKindTransfer, kind)

	_, err = ParseTransactionKind("refund")
	assert.ErrorIs(t, err, ErrInvalidKind)

	frequency, err := ParseFrequency("Monthly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyMonthly, frequency)

	_, err = ParseFrequency("HOURLY")
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	period, err := ParseGoalPeriod("semiannual")
	require.NoError(t, err)
	assert.Equal(t, GoalPeriodSemiannual, period)

	_, err = ParseGoalPeriod("weekly")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	walletKind, err := ParseWalletKind("cash")
	require.NoError(t, err)
	assert.Equal(t, WalletKindCash, walletKind)
	assert.False(t, WalletKind("GOLD").Valid())
}

func TestValidateAmount(t *testing.T) {
	for _, ok := range []string{"0.01", "1", "1.5", "1234567.89"} {
		assert.NoError(t, ValidateAmount(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0", "-0.01", "1.001", "-10"} {
		assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString(bad)), ErrInvalidAmount, bad)
	}
}

func TestDates(t *testing.T) {
	local := time.FixedZone("UTC-3", -3*60*60)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), Day(time.Date(2025, 3, 9, 22, 15, 0, 0, local)))

	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, Within(start, start, end))
	assert.True(t, Within(end, start, end))
	assert.False(t, Within(end.AddDate(0, 0, 1), start, end))
	assert.False(t, Within(start.AddDate(0, 0, -1), start, end))
}
