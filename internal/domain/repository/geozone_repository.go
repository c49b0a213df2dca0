package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/trackmap-service/internal/domain"
)

// GeozoneRepository - persisted geofence storage
type GeozoneRepository interface {
	// Create stores a new geozone
	Create(ctx context.Context, zone *domain.Geozone) error

	// GetByID returns a geozone, or nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Geozone, error)

	// ListByAccount returns the account's geozones ordered by name
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Geozone, error)

	// Update rewrites the geozone's fields and point list
	Update(ctx context.Context, zone *domain.Geozone) error

	// Delete removes a geozone. Returns whether it existed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
