package domain

import (
	"fmt"
	"strings"
)

// WalletKind classifies a wallet.
type WalletKind string

const (
	WalletKindChecking WalletKind = "CHECKING"
	WalletKindSavings  WalletKind = "SAVINGS"
	WalletKindCash     WalletKind = "CASH"
	WalletKindOther    WalletKind = "OTHER"
)

// TransactionKind is the closed set of ledger movements.
type TransactionKind string

const (
	TransactionKindIncome   TransactionKind = "INCOME"
	TransactionKindExpense  TransactionKind = "EXPENSE"
	TransactionKindTransfer TransactionKind = "TRANSFER"
)

// Frequency is how often a recurring definition materializes a transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// GoalPeriod is the nominal length of a goal window.
type GoalPeriod string

const (
	GoalPeriodMonthly    GoalPeriod = "MONTHLY"
	GoalPeriodQuarterly  GoalPeriod = "QUARTERLY"
	GoalPeriodSemiannual GoalPeriod = "SEMIANNUAL"
	GoalPeriodYearly     GoalPeriod = "YEARLY"
)

var (
	walletKinds      = []WalletKind{WalletKindChecking, WalletKindSavings, WalletKindCash, WalletKindOther}
	transactionKinds = []TransactionKind{TransactionKindIncome, TransactionKindExpense, TransactionKindTransfer}
	frequencies      = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}
	goalPeriods      = []GoalPeriod{GoalPeriodMonthly, GoalPeriodQuarterly, GoalPeriodSemiannual, GoalPeriodYearly}
)

func parseEnum[T ~string](raw string, allowed []T, sentinel error) (T, error) {
	candidate := T(strings.ToUpper(strings.TrimSpace(raw)))
	for _, value := range allowed {
		if value == candidate {
			return value, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%q: %w", raw, sentinel)
}

// ParseWalletKind accepts the wallet kind names case-insensitively.
func ParseWalletKind(raw string) (WalletKind, error) {
	return parseEnum(raw, walletKinds, ErrInvalidKind)
}

// ParseTransactionKind accepts INCOME, EXPENSE or TRANSFER case-insensitively.
func ParseTransactionKind(raw string) (TransactionKind, error) {
	return parseEnum(raw, transactionKinds, ErrInvalidKind)
}

// ParseFrequency rejects anything outside DAILY, WEEKLY, MONTHLY and YEARLY.
func ParseFrequency(raw string) (Frequency, error) {
	return parseEnum(raw, frequencies, ErrInvalidFrequency)
}

// ParseGoalPeriod accepts the goal period names case-insensitively.
func ParseGoalPeriod(raw string) (GoalPeriod, error) {
	return parseEnum(raw, goalPeriods, ErrInvalidPeriod)
}

func (k WalletKind) Valid() bool {
	_, err := ParseWalletKind(string(k))
	return err == nil
}

func (k TransactionKind) Valid() bool {
	_, err := ParseTransactionKind(string(k))
	return err == nil
}

func (f Frequency) Valid() bool {
	_, err := ParseFrequency(string(f))
	return err == nil
}

func (p GoalPeriod) Valid() bool {
	_, err := ParseGoalPeriod(string(p))
	return err == nil
}
