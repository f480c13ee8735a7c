package transaction

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/domain"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

func TestParsePatch(t *testing.T) {
	amount := "50.00"
	empty := ""

	patch, err := parsePatch(UpdateTransactionBody{Amount: &amount, CategoryID: &empty})
	require.NoError(t, err)

	got, ok := patch.Amount.Get()
	assert.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("50.00")))

	category, ok := patch.CategoryID.Get()
	assert.True(t, ok, "an empty categoryID clears the category")
	assert.False(t, category.Valid)

	assert.False(t, patch.Kind.IsValue())
	assert.False(t, patch.DestinationWalletID.IsValue())
}

func TestHTTP_GetTransaction(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	tx := sampleTransaction(owner)
	mockSvc := new(mockLedger)
	mockSvc.On("GetTransaction", mock.Anything, owner, tx.ID).Return(tx, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/transactions/"+tx.ID.String(), ownerHeader(owner))

	assert.Equal(t, http.StatusOK, resp.Code)
	var body Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "EXPENSE", body.Kind)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_UpdateTransaction(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	tx := sampleTransaction(owner)
	mockSvc := new(mockLedger)
	mockSvc.On("UpdateTransaction", mock.Anything, owner, tx.ID, mock.MatchedBy(func(p ledger.TransactionPatch) bool {
		amount, ok := p.Amount.Get()
		return ok && amount.Equal(decimal.RequireFromString("50")) && !p.Description.IsValue()
	})).Return(tx, nil)

	amount := "50.00"
	resp := newTestAPI(t, mockSvc).Patch("/v1/transactions/"+tx.ID.String(), ownerHeader(owner), UpdateTransactionBody{Amount: &amount})

	assert.Equal(t, http.StatusOK, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_UpdateTransaction_InsufficientFunds(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	mockSvc := new(mockLedger)
	mockSvc.On("UpdateTransaction", mock.Anything, owner, id, mock.Anything).Return(nil, domain.ErrInsufficientFunds)

	amount := "5000.00"
	resp := newTestAPI(t, mockSvc).Patch("/v1/transactions/"+id.String(), ownerHeader(owner), UpdateTransactionBody{Amount: &amount})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_DeleteTransaction(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	mockSvc := new(mockLedger)
	mockSvc.On("DeleteTransaction", mock.Anything, owner, id).Return(nil)

	resp := newTestAPI(t, mockSvc).Delete("/v1/transactions/"+id.String(), ownerHeader(owner))

	assert.Equal(t, http.StatusNoContent, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_DeleteTransaction_Forbidden(t *testing.T) {
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	mockSvc := new(mockLedger)
	mockSvc.On("DeleteTransaction", mock.Anything, owner, id).Return(domain.ErrForbidden)

	resp := newTestAPI(t, mockSvc).Delete("/v1/transactions/"+id.String(), ownerHeader(owner))

	assert.Equal(t, http.StatusForbidden, resp.Code)
	mockSvc.AssertExpectations(t)
}
