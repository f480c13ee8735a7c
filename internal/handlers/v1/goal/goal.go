package goal

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	goalsvc "github.com/carson-networks/ledger-server/internal/goal"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
)

// Goal is the API response model for a spending goal.
type Goal struct {
	ID            string `json:"id" doc:"Goal UUID"`
	Name          string `json:"name" doc:"Goal name"`
	TargetAmount  string `json:"targetAmount" doc:"Spending ceiling for the window"`
	CurrentAmount string `json:"currentAmount" doc:"Expenses recorded in the window"`
	Progress      string `json:"progress" doc:"Current amount as a percentage of the target"`
	Status        string `json:"status" doc:"IN_PROGRESS, ACHIEVED or EXCEEDED"`
	Period        string `json:"period" doc:"MONTHLY, QUARTERLY, SEMIANNUAL or YEARLY"`
	StartDate     string `json:"startDate" doc:"Window start (YYYY-MM-DD)"`
	EndDate       string `json:"endDate" doc:"Window end (YYYY-MM-DD)"`
	CategoryID    string `json:"categoryID,omitempty" doc:"Tracked category UUID"`
	Active        bool   `json:"active" doc:"Whether the goal is active"`
}

func fromDomain(g *domain.Goal) Goal {
	return Goal{
		ID:            g.ID.String(),
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.StringFixed(domain.MoneyPlaces),
		CurrentAmount: g.CurrentAmount.StringFixed(domain.MoneyPlaces),
		Progress:      g.Progress().StringFixed(2),
		Status:        string(g.Status()),
		Period:        string(g.Period),
		StartDate:     apierror.FormatDate(g.StartDate),
		EndDate:       apierror.FormatDate(g.EndDate),
		CategoryID:    apierror.FormatOptionalID(g.CategoryID),
		Active:        g.Active,
	}
}

type goalService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in goalsvc.NewGoal) (*domain.Goal, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Goal, error)
	List(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.Goal, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch goalsvc.Patch) (*domain.Goal, error)
	SetActive(ctx context.Context, ownerID, id uuid.UUID, active bool) (*domain.Goal, error)
	Refresh(ctx context.Context, ownerID, id uuid.UUID) (*domain.Goal, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type Handler struct {
	Goals goalService
}

func NewHandler(svc goalService) *Handler {
	return &Handler{Goals: svc}
}

func (h *Handler) Register(api huma.API) {
	tags := []string{"Goals"}
	huma.Register(api, huma.Operation{
		OperationID:   "create-goal",
		Method:        http.MethodPost,
		Path:          "/v1/goals",
		Summary:       "Create goal",
		Description:   "Creates an active goal and computes its current amount from existing expenses.",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "list-goals",
		Method:      http.MethodGet,
		Path:        "/v1/goals",
		Summary:     "List goals",
		Tags:        tags,
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "get-goal",
		Method:      http.MethodGet,
		Path:        "/v1/goals/{id}",
		Summary:     "Get goal",
		Tags:        tags,
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "update-goal",
		Method:      http.MethodPatch,
		Path:        "/v1/goals/{id}",
		Summary:     "Update goal",
		Tags:        tags,
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID: "set-goal-active",
		Method:      http.MethodPut,
		Path:        "/v1/goals/{id}/active",
		Summary:     "Activate or deactivate",
		Tags:        tags,
	}, h.setActive)
	huma.Register(api, huma.Operation{
		OperationID: "refresh-goal",
		Method:      http.MethodPost,
		Path:        "/v1/goals/{id}/refresh",
		Summary:     "Recompute current amount",
		Tags:        tags,
	}, h.refresh)
	huma.Register(api, huma.Operation{
		OperationID:   "delete-goal",
		Method:        http.MethodDelete,
		Path:          "/v1/goals/{id}",
		Summary:       "Delete goal",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}
