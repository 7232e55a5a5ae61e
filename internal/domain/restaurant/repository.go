package restaurant

import "context"

// Repository defines the persistence contract for restaurants.
type Repository interface {
	// FindByName retrieves a restaurant by its unique name.
	FindByName(ctx context.Context, name string) (*Restaurant, error)
}

// CancellationReasonRepository defines read access to the cancellation catalogue.
type CancellationReasonRepository interface {
	// FindReasonByID retrieves a single cancellation reason.
	FindReasonByID(ctx context.Context, id int64) (*CancellationReason, error)

	// ListReasons returns the full catalogue ordered by ID.
	ListReasons(ctx context.Context) ([]CancellationReason, error)
}
