package activity

import (
	"context"
)

// Repository exposes the externally owned profile store. This service only reads from it.
type Repository interface {
	// ListByRole returns every user with the given role. Implementations may page
	// internally but must return whole records.
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}
