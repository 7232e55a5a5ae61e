package slot

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger keeps a slot's availability flag truthful against the authoritative
// confirmed-booking set. The flag alone cannot express "one active booking
// per slot", so the ledger recomputes occupancy from the booking set before
// freeing a slot. Occupying never recomputes: the caller confirms capacity
// and availability first, inside the same transaction that holds the slot
// row lock.
//
// A Ledger is constructed per transaction over transaction-scoped
// repositories so that every read and write it performs participates in the
// caller's unit of work.
type Ledger struct {
	slots    Repository
	bookings ConfirmedBookingCounter
}

// NewLedger creates a Ledger over the given transaction-scoped repositories.
func NewLedger(slots Repository, bookings ConfirmedBookingCounter) *Ledger {
	return &Ledger{slots: slots, bookings: bookings}
}

// Lookup retrieves and row-locks the slot for (restaurant, date, time).
func (l *Ledger) Lookup(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string) (*AvailabilitySlot, error) {
	return l.slots.FindForUpdate(ctx, restaurantID, date, timeOfDay)
}

// IsFreeFor reports whether the slot can take a confirmed booking for
// partySize people: the availability flag must be set, the party must fit
// the slot's capacity, and no other confirmed booking may target the slot.
// excludeBookingID skips the caller's own booking on reschedule.
func (l *Ledger) IsFreeFor(ctx context.Context, s *AvailabilitySlot, partySize int, excludeBookingID *uuid.UUID) (bool, error) {
	if !s.Available() || !s.FitsParty(partySize) {
		return false, nil
	}
	occupied, err := l.bookings.CountConfirmedOnSlot(ctx, s.RestaurantID(), s.Date(), s.TimeOfDay(), excludeBookingID)
	if err != nil {
		return false, err
	}
	return occupied == 0, nil
}

// Occupy marks the slot unavailable and persists it. Callers must have
// verified IsFreeFor within the same transaction.
func (l *Ledger) Occupy(ctx context.Context, s *AvailabilitySlot) error {
	s.MarkOccupied()
	s.IncrementVersion()
	return l.slots.Update(ctx, s)
}

// Release frees the slot at (restaurant, date, time) only if no confirmed
// booking besides excludeBookingID still targets it. This is a recompute
// against the booking set, not a blind toggle: a second confirmed booking on
// the slot keeps it occupied.
func (l *Ledger) Release(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, excludeBookingID uuid.UUID) error {
	s, err := l.slots.FindForUpdate(ctx, restaurantID, date, timeOfDay)
	if err != nil {
		return err
	}

	remaining, err := l.bookings.CountConfirmedOnSlot(ctx, restaurantID, date, timeOfDay, &excludeBookingID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	s.MarkFree()
	s.IncrementVersion()
	return l.slots.Update(ctx, s)
}
