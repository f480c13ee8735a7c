package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// GoalStatus is the reporting classification of a goal's progress.
type GoalStatus string

const (
	GoalStatusInProgress GoalStatus = "IN_PROGRESS"
	GoalStatusAchieved   GoalStatus = "ACHIEVED"
	GoalStatusExceeded   GoalStatus = "EXCEEDED"
)

var (
	hundred          = decimal.NewFromInt(100)
	achievedFraction = decimal.NewFromInt(90)
)

// Goal tracks spending in one category over [StartDate, EndDate].
// CurrentAmount is a cache recomputed from EXPENSE transactions, never set directly.
type Goal struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Period        GoalPeriod
	StartDate     time.Time
	EndDate       time.Time
	CategoryID    uuid.NullUUID
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (g *Goal) Owner() uuid.UUID { return g.OwnerID }

// Progress returns current/target as a percentage rounded half-up to two places, or zero
// when the target is not positive.
func (g *Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Mul(hundred).DivRound(g.TargetAmount, MoneyPlaces)
}

// Status classifies Progress. EXCEEDED is tested first so exactly 100% is EXCEEDED.
func (g *Goal) Status() GoalStatus {
	progress := g.Progress()
	switch {
	case progress.GreaterThanOrEqual(hundred):
		return GoalStatusExceeded
	case progress.GreaterThanOrEqual(achievedFraction):
		return GoalStatusAchieved
	default:
		return GoalStatusInProgress
	}
}
