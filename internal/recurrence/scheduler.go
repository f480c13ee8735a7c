// Package recurrence materializes recurring definitions into ledger transactions on schedule.
package recurrence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// DescriptionSuffix marks transactions produced by a recurring definition.
const DescriptionSuffix = " (recurring)"

type Outcome string

const (
	OutcomeExecuted    Outcome = "EXECUTED"
	OutcomeSkipped     Outcome = "SKIPPED"
	OutcomeDeactivated Outcome = "DEACTIVATED"
)

// Execution is the result of one execute call. Transaction is set only when Outcome is EXECUTED.
type Execution struct {
	Outcome     Outcome
	Definition  *domain.RecurringDefinition
	Transaction *domain.Transaction
}

// Summary counts the outcomes of one batch pass.
type Summary struct {
	Due         int
	Executed    int
	Deactivated int
	Skipped     int
	Failed      int
}

// NewDefinition is the input for creating a recurring definition.
type NewDefinition struct {
	Description string
	Amount      decimal.Decimal
	Kind        domain.TransactionKind
	Frequency   domain.Frequency
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
	WalletID    uuid.UUID
	CategoryID  uuid.NullUUID
}

// Patch carries the fields of a definition update; unset fields keep their value.
// A set EndDate of nil removes the end date.
type Patch struct {
	Description omit.Val[string]
	Amount      omit.Val[decimal.Decimal]
	Kind        omit.Val[domain.TransactionKind]
	Frequency   omit.Val[domain.Frequency]
	DayOfMonth  omit.Val[int]
	StartDate   omit.Val[time.Time]
	EndDate     omit.Val[*time.Time]
	WalletID    omit.Val[uuid.UUID]
	CategoryID  omit.Val[uuid.NullUUID]
}

func (p Patch) touchesSchedule() bool {
	return p.Frequency.IsValue() || p.DayOfMonth.IsValue() || p.StartDate.IsValue()
}

type Scheduler struct {
	storage     storage.Storage
	processor   operator.Processor
	publisher   events.Publisher
	logger      *logrus.Logger
	concurrency int
	now         func() time.Time
}

func NewScheduler(s storage.Storage, p operator.Processor, publisher events.Publisher, logger *logrus.Logger, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		storage:     s,
		processor:   p,
		publisher:   publisher,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// WithClock replaces the scheduler's time source; "today" is the UTC date of its result.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) today() time.Time {
	return domain.Day(s.now().UTC())
}

func validate(def *domain.RecurringDefinition) error {
	if err := domain.ValidateAmount(def.Amount); err != nil {
		return err
	}
	if def.Kind != domain.TransactionKindIncome && def.Kind != domain.TransactionKindExpense {
		return fmt.Errorf("recurring kind %q must be INCOME or EXPENSE: %w", def.Kind, domain.ErrInvalidKind)
	}
	if !def.Frequency.Valid() {
		return fmt.Errorf("frequency %q: %w", def.Frequency, domain.ErrInvalidFrequency)
	}
	if def.DayOfMonth < 0 || def.DayOfMonth > 31 {
		return fmt.Errorf("day of month %d outside 1..31: %w", def.DayOfMonth, domain.ErrInvalidPeriod)
	}
	if def.EndDate != nil && def.EndDate.Before(def.StartDate) {
		return fmt.Errorf("end %s before start %s: %w",
			def.EndDate.Format(time.DateOnly), def.StartDate.Format(time.DateOnly), domain.ErrInvalidPeriod)
	}
	return nil
}

func validateReferences(ctx context.Context, tables *storage.Tables, def *domain.RecurringDefinition) error {
	w, err := tables.Wallets.FindByID(ctx, def.WalletID)
	if err != nil {
		return fmt.Errorf("wallet %s: %w", def.WalletID, err)
	}
	if _, err := domain.RequireOwned(w, def.OwnerID); err != nil {
		return fmt.Errorf("wallet %s: %w", def.WalletID, err)
	}
	if def.CategoryID.Valid {
		c, err := tables.Categories.FindByID(ctx, def.CategoryID.UUID)
		if err != nil {
			return fmt.Errorf("category %s: %w", def.CategoryID.UUID, err)
		}
		if _, err := domain.RequireOwned(c, def.OwnerID); err != nil {
			return fmt.Errorf("category %s: %w", def.CategoryID.UUID, err)
		}
	}
	return nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := domain.Day(*t)
	return &day
}

// Find loads a definition and checks it belongs to ownerID.
func Find(ctx context.Context, tables *storage.Tables, ownerID, id uuid.UUID) (*domain.RecurringDefinition, error) {
	def, err := tables.Recurring.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recurring definition %s: %w", id, err)
	}
	return domain.RequireOwned(def, ownerID)
}

// Create stores an active definition whose first execution is one period after its start date.
func (s *Scheduler) Create(ctx context.Context, ownerID uuid.UUID, in NewDefinition) (*domain.RecurringDefinition, error) {
	now := s.now().UTC()
	def := &domain.RecurringDefinition{
		ID:          uuid.Must(uuid.NewV7()),
		OwnerID:     ownerID,
		Description: in.Description,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Frequency:   in.Frequency,
		DayOfMonth:  in.DayOfMonth,
		StartDate:   domain.Day(in.StartDate),
		EndDate:     dayPtr(in.EndDate),
		Active:      true,
		WalletID:    in.WalletID,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validate(def); err != nil {
		return nil, err
	}
	next, err := Advance(def.StartDate, def.Frequency, def.DayOfMonth)
	if err != nil {
		return nil, err
	}
	def.NextExecution = next

	err = s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		if err := validateReferences(ctx, w.Tables, def); err != nil {
			return err
		}
		if err := w.Recurring.Insert(ctx, def); err != nil {
			return fmt.Errorf("insert recurring definition: %w", err)
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return def, nil
}

func (s *Scheduler) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.RecurringDefinition, error) {
	return Find(ctx, s.storage.Read(), ownerID, id)
}

func (s *Scheduler) List(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.RecurringDefinition, error) {
	return s.storage.Read().Recurring.ListByOwner(ctx, ownerID, activeOnly)
}

// Update applies patch. Changing the start date, frequency or anchor re-seeds the next execution
// from the start date.
func (s *Scheduler) Update(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (*domain.RecurringDefinition, error) {
	var updated *domain.RecurringDefinition
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		def, err := Find(ctx, w.Tables, ownerID, id)
		if err != nil {
			return err
		}

		def.Description = patch.Description.GetOr(def.Description)
		def.Amount = patch.Amount.GetOr(def.Amount)
		def.Kind = patch.Kind.GetOr(def.Kind)
		def.Frequency = patch.Frequency.GetOr(def.Frequency)
		def.DayOfMonth = patch.DayOfMonth.GetOr(def.DayOfMonth)
		if start, ok := patch.StartDate.Get(); ok {
			def.StartDate = domain.Day(start)
		}
		if end, ok := patch.EndDate.Get(); ok {
			def.EndDate = dayPtr(end)
		}
		def.WalletID = patch.WalletID.GetOr(def.WalletID)
		def.CategoryID = patch.CategoryID.GetOr(def.CategoryID)

		if err := validate(def); err != nil {
			return err
		}
		if err := validateReferences(ctx, w.Tables, def); err != nil {
			return err
		}
		if patch.touchesSchedule() {
			next, err := Advance(def.StartDate, def.Frequency, def.DayOfMonth)
			if err != nil {
				return err
			}
			def.NextExecution = next
		}

		def.UpdatedAt = s.now().UTC()
		if err := w.Recurring.Update(ctx, def); err != nil {
			return fmt.Errorf("update recurring definition: %w", err)
		}
		updated = def
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetActive is the only way to reactivate a definition the scheduler has deactivated.
func (s *Scheduler) SetActive(ctx context.Context, ownerID, id uuid.UUID, active bool) (*domain.RecurringDefinition, error) {
	var updated *domain.RecurringDefinition
	err := s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		def, err := Find(ctx, w.Tables, ownerID, id)
		if err != nil {
			return err
		}
		def.Active = active
		def.UpdatedAt = s.now().UTC()
		if err := w.Recurring.Update(ctx, def); err != nil {
			return fmt.Errorf("update recurring definition: %w", err)
		}
		updated = def
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Scheduler) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.processor.Process(ctx, operator.ActionFunc(func(ctx context.Context, w *storage.Writer) error {
		if _, err := Find(ctx, w.Tables, ownerID, id); err != nil {
			return err
		}
		return w.Recurring.Delete(ctx, id)
	}))
}

// ExecuteDefinition runs one definition as a single unit of work. Any failure rolls back the
// transaction, its balance effect and the schedule advance together.
type ExecuteDefinition struct {
	DefinitionID uuid.UUID
	// OwnerID, when set, restricts execution to that owner's definition.
	OwnerID uuid.NullUUID
	// RequireDue skips a definition whose locked row is no longer due, which happens when an
	// overlapping pass executed it after this pass listed it.
	RequireDue bool
	Today      time.Time
	Now        time.Time

	Result Execution
}

var _ operator.IAction = (*ExecuteDefinition)(nil)

func (a *ExecuteDefinition) Perform(ctx context.Context, w *storage.Writer) error {
	def, err := w.Recurring.FindByIDForUpdate(ctx, a.DefinitionID)
	if err != nil {
		return fmt.Errorf("recurring definition %s: %w", a.DefinitionID, err)
	}
	if a.OwnerID.Valid {
		if _, err := domain.RequireOwned(def, a.OwnerID.UUID); err != nil {
			return err
		}
	}
	a.Result = Execution{Outcome: OutcomeSkipped, Definition: def}

	if !def.Active {
		return nil
	}
	if a.RequireDue && def.NextExecution.After(a.Today) {
		return nil
	}

	if def.Expired(a.Today) {
		def.Active = false
		def.UpdatedAt = a.Now.UTC()
		if err := w.Recurring.Update(ctx, def); err != nil {
			return fmt.Errorf("deactivate recurring definition: %w", err)
		}
		a.Result.Outcome = OutcomeDeactivated
		return nil
	}

	tx, err := ledger.Create(ctx, w, def.OwnerID, ledger.NewTransaction{
		Description:    def.Description + DescriptionSuffix,
		Amount:         def.Amount,
		Kind:           def.Kind,
		Date:           a.Today,
		SourceWalletID: def.WalletID,
		CategoryID:     def.CategoryID,
	}, a.Now)
	if err != nil {
		return err
	}

	next, err := Advance(def.NextExecution, def.Frequency, def.DayOfMonth)
	if err != nil {
		return err
	}
	def.NextExecution = next
	if def.EndDate != nil && next.After(*def.EndDate) {
		def.Active = false
	}
	def.UpdatedAt = a.Now.UTC()
	if err := w.Recurring.Update(ctx, def); err != nil {
		return fmt.Errorf("advance recurring definition: %w", err)
	}

	a.Result.Outcome = OutcomeExecuted
	a.Result.Transaction = tx
	return nil
}

func (s *Scheduler) execute(ctx context.Context, id uuid.UUID, ownerID uuid.NullUUID) (Execution, error) {
	action := &ExecuteDefinition{
		DefinitionID: id,
		OwnerID:      ownerID,
		RequireDue:   !ownerID.Valid,
		Today:        s.today(),
		Now:          s.now(),
	}
	if err := s.processor.Process(ctx, action); err != nil {
		return Execution{}, err
	}
	if action.Result.Outcome == OutcomeExecuted {
		event := ledger.EventFor(events.RecurringExecuted, action.Result.Transaction, s.now())
		event.DefinitionID = &id
		events.Emit(ctx, s.publisher, s.logger, event)
	}
	return action.Result, nil
}

// Execute runs an owner's definition on demand, regardless of whether it is due.
func (s *Scheduler) Execute(ctx context.Context, ownerID, id uuid.UUID) (Execution, error) {
	return s.execute(ctx, id, uuid.NullUUID{UUID: ownerID, Valid: true})
}

// ProcessDue executes every definition due on or before the current day, at most once each.
// Failures are logged per definition and never stop the pass.
func (s *Scheduler) ProcessDue(ctx context.Context) (Summary, error) {
	today := s.today()
	ids, err := s.storage.Read().Recurring.ListDue(ctx, today)
	if err != nil {
		return Summary{}, fmt.Errorf("list due recurring definitions: %w", err)
	}

	summary := Summary{Due: len(ids)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			execution, err := s.execute(ctx, id, uuid.NullUUID{})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				s.logger.WithError(err).WithField("definitionID", id).Warn("Recurrence.ProcessDue.execute failed")
				return nil
			}
			switch execution.Outcome {
			case OutcomeExecuted:
				summary.Executed++
			case OutcomeDeactivated:
				summary.Deactivated++
			default:
				summary.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.WithFields(logrus.Fields{
		"today":       today.Format(time.DateOnly),
		"due":         summary.Due,
		"executed":    summary.Executed,
		"deactivated": summary.Deactivated,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
	}).Info("Recurrence.ProcessDue.complete")
	return summary, ctx.Err()
}
