package goal

import (
	"context"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	goalsvc "github.com/carson-networks/ledger-server/internal/goal"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
)

type ByIDInput struct {
	transaction.OwnerHeader
	ID string `path:"id" doc:"Goal UUID"`
}

type CreateGoalBody struct {
	Name         string `json:"name" required:"true" minLength:"1" doc:"Goal name"`
	TargetAmount string `json:"targetAmount" required:"true" doc:"Spending ceiling greater than zero"`
	Period       string `json:"period" required:"true" doc:"MONTHLY, QUARTERLY, SEMIANNUAL or YEARLY"`
	StartDate    string `json:"startDate" required:"true" doc:"Window start (YYYY-MM-DD)"`
	EndDate      string `json:"endDate" required:"true" doc:"Window end (YYYY-MM-DD)"`
	CategoryID   string `json:"categoryID,omitempty" doc:"Category UUID to track"`
}

type CreateGoalInput struct {
	transaction.OwnerHeader
	Body CreateGoalBody
}

type ListGoalsInput struct {
	transaction.OwnerHeader
	Active bool `query:"active" doc:"Only active goals"`
}

// UpdateGoalBody holds the fields to change. An empty categoryID stops tracking a category.
type UpdateGoalBody struct {
	Name         *string `json:"name,omitempty"`
	TargetAmount *string `json:"targetAmount,omitempty"`
	Period       *string `json:"period,omitempty"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	CategoryID   *string `json:"categoryID,omitempty"`
}

type UpdateGoalInput struct {
	ByIDInput
	Body UpdateGoalBody
}

type SetActiveInput struct {
	ByIDInput
	Body struct {
		Active bool `json:"active" doc:"New active flag"`
	}
}

type GoalOutput struct {
	Body Goal
}

type ListGoalsOutput struct {
	Body struct {
		Goals []Goal `json:"goals"`
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

func parseCreate(body CreateGoalBody) (goalsvc.NewGoal, error) {
	in := goalsvc.NewGoal{Name: body.Name}
	var err error
	if in.TargetAmount, err = apierror.Amount("targetAmount", body.TargetAmount); err != nil {
		return in, err
	}
	if in.Period, err = domain.ParseGoalPeriod(body.Period); err != nil {
		return in, apierror.From(err, "invalid period")
	}
	if in.StartDate, err = apierror.Date("startDate", body.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = apierror.Date("endDate", body.EndDate); err != nil {
		return in, err
	}
	if in.CategoryID, err = apierror.OptionalUUID("categoryID", body.CategoryID); err != nil {
		return in, err
	}
	return in, nil
}

func parsePatch(body UpdateGoalBody) (goalsvc.Patch, error) {
	var patch goalsvc.Patch
	if body.Name != nil {
		patch.Name = omit.From(*body.Name)
	}
	if body.TargetAmount != nil {
		amount, err := apierror.Amount("targetAmount", *body.TargetAmount)
		if err != nil {
			return patch, err
		}
		patch.TargetAmount = omit.From(amount)
	}
	if body.Period != nil {
		period, err := domain.ParseGoalPeriod(*body.Period)
		if err != nil {
			return patch, apierror.From(err, "invalid period")
		}
		patch.Period = omit.From(period)
	}
	if body.StartDate != nil {
		start, err := apierror.Date("startDate", *body.StartDate)
		if err != nil {
			return patch, err
		}
		patch.StartDate = omit.From(start)
	}
	if body.EndDate != nil {
		end, err := apierror.Date("endDate", *body.EndDate)
		if err != nil {
			return patch, err
		}
		patch.EndDate = omit.From(end)
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

func (h *Handler) create(ctx context.Context, input *CreateGoalInput) (*GoalOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	in, err := parseCreate(input.Body)
	if err != nil {
		return nil, err
	}
	g, err := h.Goals.Create(ctx, ownerID, in)
	if err != nil {
		return nil, apierror.From(err, "failed to create goal")
	}
	return &GoalOutput{Body: fromDomain(g)}, nil
}

func (h *Handler) list(ctx context.Context, input *ListGoalsInput) (*ListGoalsOutput, error) {
	ownerID, err := apierror.Owner(input.OwnerID)
	if err != nil {
		return nil, err
	}
	goals, err := h.Goals.List(ctx, ownerID, input.Active)
	if err != nil {
		return nil, apierror.From(err, "failed to list goals")
	}
	out := &ListGoalsOutput{}
	out.Body.Goals = make([]Goal, len(goals))
	for i, g := range goals {
		out.Body.Goals[i] = fromDomain(g)
	}
	return out, nil
}

func (h *Handler) get(ctx context.Context, input *ByIDInput) (*GoalOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	g, err := h.Goals.Get(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to get goal")
	}
	return &GoalOutput{Body: fromDomain(g)}, nil
}

func (h *Handler) update(ctx context.Context, input *UpdateGoalInput) (*GoalOutput, error) {
	ownerID, id, err := parseIDs(&input.ByIDInput)
	if err != nil {
		return nil, err
	}
	patch, err := parsePatch(input.Body)
	if err != nil {
		return nil, err
	}
	g, err := h.Goals.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, apierror.From(err, "failed to update goal")
	}
	return &GoalOutput{Body: fromDomain(g)}, nil
}

func (h *Handler) setActive(ctx context.Context, input *SetActiveInput) (*GoalOutput, error) {
	ownerID, id, err := parseIDs(&input.ByIDInput)
	if err != nil {
		return nil, err
	}
	g, err := h.Goals.SetActive(ctx, ownerID, id, input.Body.Active)
	if err != nil {
		return nil, apierror.From(err, "failed to update goal")
	}
	return &GoalOutput{Body: fromDomain(g)}, nil
}

func (h *Handler) refresh(ctx context.Context, input *ByIDInput) (*GoalOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	g, err := h.Goals.Refresh(ctx, ownerID, id)
	if err != nil {
		return nil, apierror.From(err, "failed to refresh goal")
	}
	return &GoalOutput{Body: fromDomain(g)}, nil
}

func (h *Handler) delete(ctx context.Context, input *ByIDInput) (*DeleteOutput, error) {
	ownerID, id, err := parseIDs(input)
	if err != nil {
		return nil, err
	}
	if err := h.Goals.Delete(ctx, ownerID, id); err != nil {
		return nil, apierror.From(err, "failed to delete goal")
	}
	return &DeleteOutput{}, nil
}
