package keys

//go:generate mockgen -destination=mock_repository.go -package=keys github.com/gravitrone/keyadmin/internal/keys Repository

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned by a Repository when the session is no longer
// accepted by the backend.
var ErrUnauthorized = errors.New("unauthorized")

// Repository is the remote side of the console.
type Repository interface {
	// Search returns every record matching q, in server order.
	Search(ctx context.Context, q SearchQuery) ([]Record, error)
	// Save creates or updates a record. The returned record is the server's
	// canonical copy when the backend sends one, otherwise nil.
	Save(ctx context.Context, r Record) (*Record, error)
}
