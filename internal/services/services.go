package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// ListStore is the persistence service for custom lists and the users that own them.
type ListStore interface {
	// ListByOwner returns every list whose createdBy equals userID, in server order.
	ListByOwner(ctx context.Context, userID string) ([]models.CustomList, error)

	// ListPublic returns every list flagged public.
	ListPublic(ctx context.Context) ([]models.CustomList, error)

	// Get fetches a single list by id.
	Get(ctx context.Context, id string) (*models.CustomList, error)

	// Create submits a list without an id and returns it with the server-assigned id.
	Create(ctx context.Context, list models.CustomList) (*models.CustomList, error)

	// Patch sends only the non-nil fields of patch and returns the updated list.
	Patch(ctx context.Context, id string, patch models.ListPatch) (*models.CustomList, error)

	// Delete removes a list.
	Delete(ctx context.Context, id string) error

	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	RegisterUser(ctx context.Context, user models.User) (*models.User, error)
}

// MetadataService resolves a movie id to its full detail.
type MetadataService interface {
	Resolve(ctx context.Context, movieID int64) (*models.Movie, error)
}

// SessionProvider reports the signed-in user, if any.
type SessionProvider interface {
	CurrentUser(ctx context.Context) (*models.User, bool)
}

// NoMetadata stands in when no metadata credentials are configured. Every lookup fails with
// Err, so enriched items stay unresolved instead of the caller failing.
type NoMetadata struct {
	Err error
}

func (n NoMetadata) Resolve(_ context.Context, movieID int64) (*models.Movie, error) {
	if n.Err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, n.Err)
	}
	return nil, fmt.Errorf("movie %d: %w", movieID, shared.ErrServiceUnavailable)
}
