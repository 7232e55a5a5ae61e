package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows a booking listing. Nil fields are ignored; the date
// range is inclusive on both ends.
type ListFilter struct {
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByReference retrieves a booking by its public reference within a restaurant.
	FindByReference(ctx context.Context, restaurantID uuid.UUID, reference string) (*Booking, error)

	// ReferenceExists reports whether any booking already uses the reference.
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// CountConfirmedOnSlot counts confirmed bookings targeting the slot
	// (restaurant, date, time), optionally excluding one booking.
	CountConfirmedOnSlot(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, excludeBookingID *uuid.UUID) (int64, error)

	// List retrieves a restaurant's bookings sorted by visit date then visit
	// time, both descending, applying the filter.
	List(ctx context.Context, restaurantID uuid.UUID, filter ListFilter) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error
}
