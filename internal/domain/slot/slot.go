package slot

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a bookable (restaurant, date, time) capacity unit.
// Slots are pre-provisioned; the booking service only flips their
// availability flag. The flag is a cached projection of the confirmed
// booking set, maintained by the Ledger.
type AvailabilitySlot struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	date         time.Time
	timeOfDay    string
	maxPartySize int
	available    bool
	version      int64
	createdAt    time.Time
	updatedAt    time.Time
}

// Reconstruct rebuilds an AvailabilitySlot from persistence.
func Reconstruct(
	id, restaurantID uuid.UUID,
	date time.Time,
	timeOfDay string,
	maxPartySize int,
	available bool,
	version int64,
	createdAt, updatedAt time.Time,
) *AvailabilitySlot {
	return &AvailabilitySlot{
		id:           id,
		restaurantID: restaurantID,
		date:         date,
		timeOfDay:    timeOfDay,
		maxPartySize: maxPartySize,
		available:    available,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// Getters.
func (s *AvailabilitySlot) ID() uuid.UUID           { return s.id }
func (s *AvailabilitySlot) RestaurantID() uuid.UUID { return s.restaurantID }
func (s *AvailabilitySlot) Date() time.Time         { return s.date }
func (s *AvailabilitySlot) TimeOfDay() string       { return s.timeOfDay }
func (s *AvailabilitySlot) MaxPartySize() int       { return s.maxPartySize }
func (s *AvailabilitySlot) Available() bool         { return s.available }
func (s *AvailabilitySlot) Version() int64          { return s.version }
func (s *AvailabilitySlot) CreatedAt() time.Time    { return s.createdAt }
func (s *AvailabilitySlot) UpdatedAt() time.Time    { return s.updatedAt }

// FitsParty returns true if the slot's capacity admits the given party size.
func (s *AvailabilitySlot) FitsParty(partySize int) bool {
	return partySize > 0 && partySize <= s.maxPartySize
}

// MarkOccupied flags the slot as taken.
func (s *AvailabilitySlot) MarkOccupied() {
	s.available = false
	s.updatedAt = time.Now().UTC()
}

// MarkFree flags the slot as available again.
func (s *AvailabilitySlot) MarkFree() {
	s.available = true
	s.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (s *AvailabilitySlot) IncrementVersion() {
	s.version++
}
