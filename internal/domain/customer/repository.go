package customer

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for customer records.
type Repository interface {
	// FindByID retrieves a customer by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail retrieves a customer by email, the deduplication key.
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// Save persists a new customer record.
	Save(ctx context.Context, c *Customer) error
}
