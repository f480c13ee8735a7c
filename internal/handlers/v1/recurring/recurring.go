package recurring

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/recurrence"
)

// Definition is the API response model for a recurring definition.
type Definition struct {
	ID            string `json:"id" doc:"Definition UUID"`
	Description   string `json:"description" doc:"Description copied onto every produced transaction"`
	Amount        string `json:"amount" doc:"Decimal amount"`
	Kind          string `json:"kind" doc:"INCOME or EXPENSE"`
	Frequency     string `json:"frequency" doc:"DAILY, WEEKLY, MONTHLY or YEARLY"`
	DayOfMonth    int    `json:"dayOfMonth,omitempty" doc:"MONTHLY anchor day (1-31)"`
	StartDate     string `json:"startDate" doc:"First day of the schedule (YYYY-MM-DD)"`
	EndDate       string `json:"endDate,omitempty" doc:"Last day of the schedule (YYYY-MM-DD)"`
	NextExecution string `json:"nextExecution" doc:"Next due date (YYYY-MM-DD)"`
	Active        bool   `json:"active" doc:"Whether the scheduler executes this definition"`
	WalletID      string `json:"walletID" doc:"Wallet UUID"`
	CategoryID    string `json:"categoryID,omitempty" doc:"Category UUID"`
}

func fromDomain(def *domain.RecurringDefinition) Definition {
	out := Definition{
		ID:            def.ID.String(),
		Description:   def.Description,
		Amount:        def.Amount.StringFixed(domain.MoneyPlaces),
		Kind:          string(def.Kind),
		Frequency:     string(def.Frequency),
		DayOfMonth:    def.DayOfMonth,
		StartDate:     apierror.FormatDate(def.StartDate),
		NextExecution: apierror.FormatDate(def.NextExecution),
		Active:        def.Active,
		WalletID:      def.WalletID.String(),
		CategoryID:    apierror.FormatOptionalID(def.CategoryID),
	}
	if def.EndDate != nil {
		out.EndDate = apierror.FormatDate(*def.EndDate)
	}
	return out
}

type scheduler interface {
	Create(ctx context.Context, ownerID uuid.UUID, in recurrence.NewDefinition) (*domain.RecurringDefinition, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.RecurringDefinition, error)
	List(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.RecurringDefinition, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch recurrence.Patch) (*domain.RecurringDefinition, error)
	SetActive(ctx context.Context, ownerID, id uuid.UUID, active bool) (*domain.RecurringDefinition, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Execute(ctx context.Context, ownerID, id uuid.UUID) (recurrence.Execution, error)
}

// Handler serves the /v1/recurring endpoints.
type Handler struct {
	Scheduler scheduler
}

func NewHandler(s scheduler) *Handler {
	return &Handler{Scheduler: s}
}

func (h *Handler) Register(api huma.API) {
	tags := []string{"Recurring"}
	huma.Register(api, huma.Operation{
		OperationID:   "create-recurring",
		Method:        http.MethodPost,
		Path:          "/v1/recurring",
		Summary:       "Create recurring definition",
		Description:   "Creates an active definition whose first execution is one period after its start date.",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "list-recurring",
		Method:      http.MethodGet,
		Path:        "/v1/recurring",
		Summary:     "List recurring definitions",
		Tags:        tags,
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID: "get-recurring",
		Method:      http.MethodGet,
		Path:        "/v1/recurring/{id}",
		Summary:     "Get recurring definition",
		Tags:        tags,
	}, h.get)
	huma.Register(api, huma.Operation{
		OperationID: "update-recurring",
		Method:      http.MethodPatch,
		Path:        "/v1/recurring/{id}",
		Summary:     "Update recurring definition",
		Description: "Changing the start date, frequency or anchor re-seeds the next execution.",
		Tags:        tags,
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID: "set-recurring-active",
		Method:      http.MethodPut,
		Path:        "/v1/recurring/{id}/active",
		Summary:     "Activate or deactivate",
		Tags:        tags,
	}, h.setActive)
	huma.Register(api, huma.Operation{
		OperationID: "execute-recurring",
		Method:      http.MethodPost,
		Path:        "/v1/recurring/{id}/execute",
		Summary:     "Execute now",
		Description: "Materializes one transaction immediately regardless of the due date.",
		Tags:        tags,
	}, h.execute)
	huma.Register(api, huma.Operation{
		OperationID:   "delete-recurring",
		Method:        http.MethodDelete,
		Path:          "/v1/recurring/{id}",
		Summary:       "Delete recurring definition",
		Tags:          tags,
		DefaultStatus: http.StatusNoContent,
	}, h.delete)
}
