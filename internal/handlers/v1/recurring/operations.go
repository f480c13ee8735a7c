package recurring

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/recurrence"
)

type ByIDInput struct {
	transaction.OwnerHeader
	ID string `path:"id" doc:"Definition UUID"`
}

type CreateDefinitionBody struct {
	Description string `json:"description" required:"true" minLength:"1" doc:"Description"`
	Amount      string `json:"amount" required:"true" doc:"Decimal amount greater than zero"`
	Kind        string `json:"kind" required:"true" doc:"INCOME or EXPENSE"`
	Frequency   string `json:"frequency" required:"true" doc:"DAILY, WEEKLY, MONTHLY or YEARLY"`
	DayOfMonth  int    `json:"dayOfMonth,omitempty" doc:"MONTHLY anchor day (1-31)"`
	StartDate   string `json:"startDate" required:"true" doc:"First day (YYYY-MM-DD)"`
	EndDate     string `json:"endDate,omitempty" doc:"Last day (YYYY-MM-DD)"`
	WalletID    string `json:"walletID" required:"true" format:"uuid" doc:"Wallet UUID"`
	CategoryID  string `json:"categoryID,omitempty" doc:"Category UUID"`
}

type CreateDefinitionInput struct {
	transaction.OwnerHeader
	Body CreateDefinitionBody
}

type ListDefinitionsInput struct {
	transaction.OwnerHeader
	Active bool `query:"active" doc:"Only active definitions"`
}

// UpdateDefinitionBody holds the fields to change. An empty endDate or categoryID clears it.
type UpdateDefinitionBody struct {
	Description *string `json:"description,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Kind        *string `json:"kind,omitempty"`
	Frequency   *string `json:"frequency,omitempty"`
	DayOfMonth  *int    `json:"dayOfMonth,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
	WalletID    *string `json:"walletID,omitempty"`
	CategoryID  *string `json:"categoryID,omitempty"`
}

type UpdateDefinitionInput struct {
	ByIDInput
	Body UpdateDefinitionBody
}

type SetActiveInput struct {
	ByIDInput
	Body struct {
		Active bool `json:"active" doc:"New active flag"`
	}
}

type DefinitionOutput struct {
	Body Definition
}

type ListDefinitionsOutput struct {
	Body struct {
		Definitions []Definition `json:"definitions"`
	}
}

type ExecuteOutput struct {
	Body struct {
		Outcome       string     `json:"outcome" doc:"EXECUTED, SKIPPED or DEACTIVATED"`
		Definition    Definition `json:"definition"`
		TransactionID string     `json:"transactionID,omitempty" doc:"UUID of the produced transaction"`
	}
}

type DeleteOutput struct{}

func parseIDs(input *ByIDInput) (ownerID, id uuid.UUID, err error) {
	if ownerID, err = apierror.Owner(input.OwnerID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if id, err = apierror.UUID("id", input.ID); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return ownerID, id, nil
}

func optionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := apierror.Date(field, raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func parseCreate(body CreateDefinitionBody) (recurrence.NewDefinition, error) {
	in := recurrence.NewDefinition{Description: body.Description, DayOfMonth: body.DayOfMonth}
	var err error
	if in.Amount, err = apierror.Amount("amount", body.Amount); err != nil {
		return in, err
	}
	if in.Kind, err = domain.ParseTransactionKind(body.Kind); err != nil {
		return in, apierror.From(err, "invalid kind")
	}
	if in.Frequency, err = domain.ParseFrequency(body.Frequency); err != nil {
		return in, apierror.From(err, "invalid frequency")
	}
	if in.StartDate, err = apierror.Date("startDate", body.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = optionalDate("endDate", body.EndDate); err != nil {
		return in, err
	}
	if in.WalletID, err = apierror.UUID("walletID", body.WalletID); err != nil {
		return in, err
	}
	if in.CategoryID, err = apierror.OptionalUUID("categoryID", body.CategoryID); err != nil {
		return in, err
	}
	return in, nil
}

func parsePatch(body UpdateDefinitionBody) (recurrence.Patch, error) {
	var patch recurrence.Patch
	if body.Description != nil {
		patch.Description = omit.From(*body.Description)
	}
	if body.Amount != nil {
		amount, err := apierror.Amount("amount", *body.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = omit.From(amount)
	}
	if body.Kind != nil {
		kind, err := domain.ParseTransactionKind(*body.Kind)
		if err != nil {
			return patch, apierror.From(err, "invalid kind")
		}
		patch.Kind = omit.From(kind)
	}
	if body.Frequency != nil {
		frequency, err := domain.ParseFrequency(*body.Frequency)
		if err != nil {
			return patch, apierror.From(err, "invalid frequency")
		}
		patch.Frequency = omit.From(frequency)
	}
	if body.DayOfMonth != nil {
		patch.DayOfMonth = omit.From(*body.DayOfMonth)
	}
	if body.StartDate != nil {
		start, err := apierror.Date("startDate", *body.StartDate)
		if err != nil {
			return patch, err
		}
		patch.StartDate = omit.From(start)
	}
	if body.EndDate != nil {
		end, err := optionalDate("endDate", *body.EndDate)
		if err != nil {
			return patch, err
		}
		patch.EndDate = omit.From(end)
	}
	if body.WalletID != nil {
		id, err := apierror.UUID("walletID", *body.WalletID)
		if err != nil {
			return patch, err
		}
		patch.WalletID = omit.From(id)
	}
	if body.CategoryID != nil {
		id, err := apierror.OptionalUUID("categoryID", *body.CategoryID)
		if err != nil {
			return patch, err
		}
		patch.CategoryID = omit.From(id)
	}
	return patch, nil
}

func (h *Handler) create(ctx context.Context, input *CreateDefinitionInput) (*DefinitionOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	in, err := parseCreate(input.Body)
	if err != nil {
		return nil, err
	}
	def, err := h.Scheduler.Create(ctx, ownerID, in)
	if err != nil {
		return nil, apierror.From(err, "failed to create recurring definition")
	}
	return &DefinitionOutput{Body: fromDomain(def)}, nil
}

func (h *Handler) list(ctx context.Context, input *ListDefinitionsInput) (*ListDefinitionsOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	defs, err := h.Scheduler.List(ctx, ownerID, input.Active)
	if err != nil {
		return nil, apierror.From(err, "failed to list recurring definitions")
	}
	out := &ListDefinitionsOutput{}
	out.Body.Definitions = make([]Definition, len(defs))
	for i, def := range defs {
		out.Body.Definitions[i] = fromDomain(def)
	}
	return out, nil
}

func (h *Handler) get(ctx context.Context, input *ByIDInput) (*DefinitionOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	def, err := h.Scheduler.Get(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to get recurring definition")
	}
	return &DefinitionOutput{Body: fromDomain(def)}, nil
}

func (h *Handler) update(ctx context.Context, input *UpdateDefinitionInput) (*DefinitionOutput, error) {
	ownerID, id, err := parseIDs(&input.ByIDInput)
	if err != nil {
		return nil, err
	}
	patch, err := parsePatch(input.Body)
	if err != nil {
		return nil, err
	}
	def, err := h.Scheduler.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, apierror.From(err, "failed to update recurring definition")
	}
	return &DefinitionOutput{Body: fromDomain(def)}, nil
}

func (h *Handler) setActive(ctx context.Context, input *SetActiveInput) (*DefinitionOutput, error) {
	ownerID, id, err := parseIDs(&input.ByIDInput)
	if err != nil {
		return nil, err
	}
	def, err := h.Scheduler.SetActive(ctx, ownerID, id, input.Body.Active)
	if err != nil {
		return nil, apierror.From(err, "failed to update recurring definition")
	}
	return &DefinitionOutput{Body: fromDomain(def)}, nil
}

func (h *Handler) execute(ctx context.Context, input *ByIDInput) (*ExecuteOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	execution, err := h.Scheduler.Execute(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to execute recurring definition")
	}

	out := &ExecuteOutput{}
	out.Body.Outcome = string(execution.Outcome)
	out.Body.Definition = fromDomain(execution.Definition)
	if execution.Transaction != nil {
		out.Body.TransactionID = execution.Transaction.ID.String()
	}
	return out, nil
}

func (h *Handler) delete(ctx context.Context, input *ByIDInput) (*DeleteOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	if err := h.Scheduler.Delete(ctx, ownerID, id); err != nil {
		return nil, apierror.From(err, "failed to delete recurring definition")
	}
	return &DeleteOutput{}, nil
}
