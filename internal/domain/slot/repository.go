package slot

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for availability slots.
type Repository interface {
	// FindForUpdate retrieves the slot for (restaurant, date, time) and locks
	// its row for the remainder of the transaction, serializing concurrent
	// mutators of the same slot.
	FindForUpdate(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string) (*AvailabilitySlot, error)

	// Update persists the slot's availability flag with optimistic locking.
	Update(ctx context.Context, s *AvailabilitySlot) error
}

// ConfirmedBookingCounter reports how many confirmed bookings currently
// target a slot. The booking repository satisfies this; the ledger depends
// only on the count.
type ConfirmedBookingCounter interface {
	// CountConfirmedOnSlot counts confirmed bookings on (restaurant, date,
	// time), optionally excluding one booking for reschedule self-comparisons.
	CountConfirmedOnSlot(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, excludeBookingID *uuid.UUID) (int64, error)
}
