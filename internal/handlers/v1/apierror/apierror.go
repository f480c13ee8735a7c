// Package apierror translates domain errors and request fields for the v1 huma handlers.
package apierror

import (
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/domain"
)

var validationErrors = []error{
	domain.ErrInvalidAmount,
	domain.ErrInvalidTransfer,
	domain.ErrInvalidPeriod,
	domain.ErrInvalidKind,
	domain.ErrInvalidFrequency,
}

// From maps err onto the matching HTTP status. Unrecognized errors become a 500 whose message
// does not leak the cause.
func From(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, domain.ErrInUse):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return huma.Error400BadRequest(err.Error())
		}
	}
	return huma.NewError(http.StatusInternalServerError, msg, err)
}

// Owner parses the X-Owner-ID header forwarded by the authenticating proxy.
func Owner(raw string) (uuid.UUID, error) {
	return UUID("X-Owner-ID", raw)
}

func UUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

// OptionalUUID parses raw unless it is empty, which yields an invalid NullUUID.
func OptionalUUID(field, raw string) (uuid.NullUUID, error) {
	if raw == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := UUID(field, raw)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}

func Amount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return amount, nil
}

// Date parses a calendar date in YYYY-MM-DD form.
func Date(field, raw string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return date, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatOptionalID renders id, or "" when it is not set.
func FormatOptionalID(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}
	return id.UUID.String()
}
