package domain

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// Owned is implemented by every entity that belongs to exactly one user.
type Owned interface {
	Owner() uuid.UUID
}

// RequireOwned returns entity unchanged when it belongs to ownerID and ErrForbidden otherwise.
func RequireOwned[T Owned](entity T, ownerID uuid.UUID) (T, error) {
	if entity.Owner() != ownerID {
		var zero T
		return zero, fmt.Errorf("owner %s: %w", ownerID, ErrForbidden)
	}
	return entity, nil
}
