package restaurant

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Restaurant is the identity anchor every booking belongs to. Restaurants are
// provisioned out of band and never mutated by the booking service.
type Restaurant struct {
	id            uuid.UUID
	name          string
	micrositeName string
	createdAt     time.Time
}

// NewRestaurant creates a new restaurant with a validated unique name.
func NewRestaurant(name, micrositeName string) (*Restaurant, error) {
	if name == "" {
		return nil, fmt.Errorf("restaurant name is required")
	}
	if micrositeName == "" {
		micrositeName = name
	}
	return &Restaurant{
		id:            uuid.New(),
		name:          name,
		micrositeName: micrositeName,
		createdAt:     time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Restaurant from persistence.
func Reconstruct(id uuid.UUID, name, micrositeName string, createdAt time.Time) *Restaurant {
	return &Restaurant{
		id:            id,
		name:          name,
		micrositeName: micrositeName,
		createdAt:     createdAt,
	}
}

// Getters.
func (r *Restaurant) ID() uuid.UUID         { return r.id }
func (r *Restaurant) Name() string          { return r.name }
func (r *Restaurant) MicrositeName() string { return r.micrositeName }
func (r *Restaurant) CreatedAt() time.Time  { return r.createdAt }
