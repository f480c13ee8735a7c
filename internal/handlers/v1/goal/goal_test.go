package goal

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/domain"
	goalsvc "github.com/carson-networks/ledger-server/internal/goal"
)

type mockGoalService struct {
	mock.Mock
}

var _ goalService = (*mockGoalService)(nil)

func (m *mockGoalService) Create(ctx context.Context, ownerID uuid.UUID, in goalsvc.NewGoal) (*domain.Goal, error) {
	args := m.Called(ctx, ownerID, in)
	g, _ := args.Get(0).(*domain.Goal)
	return g, args.Error(1)
}

func (m *mockGoalService) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Goal, error) {
	args := m.Called(ctx, ownerID, id)
	g, _ := args.Get(0).(*domain.Goal)
	return g, args.Error(1)
}

func (m *mockGoalService) List(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]*domain.Goal, error) {
	args := m.Called(ctx, ownerID, activeOnly)
	gs, _ := args.Get(0).([]*domain.Goal)
	return gs, args.Error(1)
}

func (m *mockGoalService) Update(ctx context.Context, ownerID, id uuid.UUID, patch goalsvc.Patch) (*domain.Goal, error) {
	args := m.Called(ctx, ownerID, id, patch)
	g, _ := args.Get(0).(*domain.Goal)
	return g, args.Error(1)
}

func (m *mockGoalService) SetActive(ctx context.Context, ownerID, id uuid.UUID, active bool) (*domain.Goal, error) {
	args := m.Called(ctx, ownerID, id, active)
	g, _ := args.Get(0).(*domain.Goal)
	return g, args.Error(1)
}

func (m *mockGoalService) Refresh(ctx context.Context, ownerID, id uuid.UUID) (*domain.Goal, error) {
	args := m.Called(ctx, ownerID, id)
	g, _ := args.Get(0).(*domain.Goal)
	return g, args.Error(1)
}

func (m *mockGoalService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func newTestAPI(t *testing.T, svc goalService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewHandler(svc).Register(api)
	return api
}

func ownerHeader(owner uuid.UUID) string {
	return "X-Owner-ID: " + owner.String()
}

func sampleGoal(owner uuid.UUID) *domain.Goal {
	return &domain.Goal{
		ID:            uuid.Must(uuid.NewV4()),
		OwnerID:       owner,
		Name:          "Groceries",
		TargetAmount:  decimal.RequireFromString("200"),
		CurrentAmount: decimal.RequireFromString("179.99"),
		Period:        domain.GoalPeriodMonthly,
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		CategoryID:    uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
		Active:        true,
	}
}

func TestHTTP_CreateGoal_ReportsProgress(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	g := sampleGoal(owner)

	mockSvc := new(mockGoalService)
	mockSvc.On("Create", mock.Anything, owner, mock.MatchedBy(func(in goalsvc.NewGoal) bool {
		return in.Name == "Groceries" &&
			in.TargetAmount.Equal(decimal.RequireFromString("200")) &&
			in.Period == domain.GoalPeriodMonthly &&
			in.StartDate.Equal(g.StartDate) &&
			in.EndDate.Equal(g.EndDate) &&
			in.CategoryID == g.CategoryID
	})).Return(g, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/goals", ownerHeader(owner), CreateGoalBody{
		Name:         "Groceries",
		TargetAmount: "200",
		Period:       "monthly",
		StartDate:    "2025-03-01",
		EndDate:      "2025-03-31",
		CategoryID:   g.CategoryID.UUID.String(),
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Goal
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "179.99", body.CurrentAmount)
	assert.Equal(t, "90.00", body.Progress)
	assert.Equal(t, "ACHIEVED", body.Status)
	assert.Equal(t, g.CategoryID.UUID.String(), body.CategoryID)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateGoal_InvalidPeriod(t *testing.T) {
	mockSvc := new(mockGoalService)

	resp := newTestAPI(t, mockSvc).Post("/v1/goals", ownerHeader(uuid.Must(uuid.NewV4())), CreateGoalBody{
		Name:         "Fun",
		TargetAmount: "50",
		Period:       "WEEKLY",
		StartDate:    "2025-03-01",
		EndDate:      "2025-03-07",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTP_CreateGoal_InvalidWindow(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	mockSvc := new(mockGoalService)
	mockSvc.On("Create", mock.Anything, owner, mock.Anything).Return(nil, domain.ErrInvalidPeriod)

	resp := newTestAPI(t, mockSvc).Post("/v1/goals", ownerHeader(owner), CreateGoalBody{
		Name:         "Backwards",
		TargetAmount: "50",
		Period:       "MONTHLY",
		StartDate:    "2025-03-31",
		EndDate:      "2025-03-01",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListGoals(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	mockSvc := new(mockGoalService)
	mockSvc.On("List", mock.Anything, owner, true).Return([]*domain.Goal{sampleGoal(owner), sampleGoal(owner)}, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/goals?active=true", ownerHeader(owner))

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Goals []Goal `json:"goals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Goals, 2)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_UpdateGoal_ClearsCategory(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	g := sampleGoal(owner)
	mockSvc := new(mockGoalService)
	mockSvc.On("Update", mock.Anything, owner, g.ID, mock.MatchedBy(func(p goalsvc.Patch) bool {
		category, ok := p.CategoryID.Get()
		return ok && !category.Valid && !p.Name.IsValue() && !p.TargetAmount.IsValue()
	})).Return(g, nil)

	empty := ""
	resp := newTestAPI(t, mockSvc).Patch("/v1/goals/"+g.ID.String(), ownerHeader(owner), UpdateGoalBody{CategoryID: &empty})

	assert.Equal(t, http.StatusOK, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_RefreshAndActivate(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	g := sampleGoal(owner)
	mockSvc := new(mockGoalService)
	mockSvc.On("Refresh", mock.Anything, owner, g.ID).Return(g, nil)
	mockSvc.On("SetActive", mock.Anything, owner, g.ID, false).Return(g, nil)

	api := newTestAPI(t, mockSvc)
	assert.Equal(t, http.StatusOK, api.Post("/v1/goals/"+g.ID.String()+"/refresh", ownerHeader(owner)).Code)
	assert.Equal(t, http.StatusOK, api.Put("/v1/goals/"+g.ID.String()+"/active", ownerHeader(owner), map[string]any{"active": false}).Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_DeleteGoal(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	present := uuid.Must(uuid.NewV4())
	missing := uuid.Must(uuid.NewV4())
	mockSvc := new(mockGoalService)
	mockSvc.On("Delete", mock.Anything, owner, present).Return(nil)
	mockSvc.On("Delete", mock.Anything, owner, missing).Return(domain.ErrNotFound)

	api := newTestAPI(t, mockSvc)
	assert.Equal(t, http.StatusNoContent, api.Delete("/v1/goals/"+present.String(), ownerHeader(owner)).Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/v1/goals/"+missing.String(), ownerHeader(owner)).Code)
	mockSvc.AssertExpectations(t)
}
