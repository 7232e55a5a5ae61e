package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablenest/service-booking/internal/domain"
)

// Booking is the aggregate root for a restaurant reservation. Its
// (visit date, visit time) always identifies a provisioned availability slot
// for its restaurant; the lifecycle service keeps the two consistent.
type Booking struct {
	id                   uuid.UUID
	reference            string
	restaurantID         uuid.UUID
	customerID           uuid.UUID
	visitDate            time.Time
	visitTime            string
	partySize            int
	channelCode          string
	specialRequests      string
	isLeaveTimeConfirmed bool
	roomNumber           string
	status               Status
	cancellationReasonID *int64

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a confirmed booking with validated fields.
func NewBooking(
	reference string,
	restaurantID, customerID uuid.UUID,
	visitDate time.Time,
	visitTime string,
	partySize int,
	channelCode, specialRequests string,
	isLeaveTimeConfirmed bool,
	roomNumber string,
) (*Booking, error) {
	if len(reference) != ReferenceLength {
		return nil, domain.NewInvalidRequestError("booking reference must be 7 characters")
	}
	if restaurantID == uuid.Nil {
		return nil, domain.NewInvalidRequestError("restaurant ID is required")
	}
	if customerID == uuid.Nil {
		return nil, domain.NewInvalidRequestError("customer ID is required")
	}
	if visitDate.IsZero() {
		return nil, domain.NewInvalidRequestError("visit date is required")
	}
	if visitTime == "" {
		return nil, domain.NewInvalidRequestError("visit time is required")
	}
	if partySize <= 0 {
		return nil, domain.NewInvalidRequestError("party size must be positive")
	}
	if channelCode == "" {
		return nil, domain.NewInvalidRequestError("channel code is required")
	}

	now := time.Now().UTC()
	return &Booking{
		id:                   uuid.New(),
		reference:            reference,
		restaurantID:         restaurantID,
		customerID:           customerID,
		visitDate:            visitDate,
		visitTime:            visitTime,
		partySize:            partySize,
		channelCode:          channelCode,
		specialRequests:      specialRequests,
		isLeaveTimeConfirmed: isLeaveTimeConfirmed,
		roomNumber:           roomNumber,
		status:               StatusConfirmed,
		version:              1,
		createdAt:            now,
		updatedAt:            now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reference string,
	restaurantID, customerID uuid.UUID,
	visitDate time.Time,
	visitTime string,
	partySize int,
	channelCode, specialRequests string,
	isLeaveTimeConfirmed bool,
	roomNumber string,
	status Status,
	cancellationReasonID *int64,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                   id,
		reference:            reference,
		restaurantID:         restaurantID,
		customerID:           customerID,
		visitDate:            visitDate,
		visitTime:            visitTime,
		partySize:            partySize,
		channelCode:          channelCode,
		specialRequests:      specialRequests,
		isLeaveTimeConfirmed: isLeaveTimeConfirmed,
		roomNumber:           roomNumber,
		status:               status,
		cancellationReasonID: cancellationReasonID,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's internal identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the public 7-character booking reference.
func (b *Booking) Reference() string { return b.reference }

// RestaurantID returns the restaurant this booking belongs to.
func (b *Booking) RestaurantID() uuid.UUID { return b.restaurantID }

// CustomerID returns the guest who made the booking.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// VisitDate returns the reserved date.
func (b *Booking) VisitDate() time.Time { return b.visitDate }

// VisitTime returns the reserved time of day in "15:04" form.
func (b *Booking) VisitTime() string { return b.visitTime }

// PartySize returns the number of guests.
func (b *Booking) PartySize() int { return b.partySize }

// ChannelCode returns the channel the booking arrived through.
func (b *Booking) ChannelCode() string { return b.channelCode }

// SpecialRequests returns any free-text requests from the guest.
func (b *Booking) SpecialRequests() string { return b.specialRequests }

// IsLeaveTimeConfirmed reports whether the guest confirmed the leave time.
func (b *Booking) IsLeaveTimeConfirmed() bool { return b.isLeaveTimeConfirmed }

// RoomNumber returns the hotel room number, if supplied.
func (b *Booking) RoomNumber() string { return b.roomNumber }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// CancellationReasonID returns the catalogue ID recorded on cancellation,
// or nil while the booking is confirmed.
func (b *Booking) CancellationReasonID() *int64 { return b.cancellationReasonID }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Cancel transitions the booking to cancelled, recording the catalogue
// reason. Cancelled is terminal: cancelling twice is a conflict.
func (b *Booking) Cancel(reasonID int64) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewConflictError("booking is already cancelled")
	}
	b.status = StatusCancelled
	b.cancellationReasonID = &reasonID
	b.updatedAt = time.Now().UTC()
	return nil
}

// UpdateParams carries the optional fields of a reschedule/edit request.
// Nil fields fall back to the booking's current values.
type UpdateParams struct {
	VisitDate            *time.Time
	VisitTime            *string
	PartySize            *int
	SpecialRequests      *string
	IsLeaveTimeConfirmed *bool
}

// EffectiveVisit resolves the target (date, time, party size) of an update,
// falling back to current values for unset fields.
func (b *Booking) EffectiveVisit(params UpdateParams) (time.Time, string, int) {
	date, timeOfDay, party := b.visitDate, b.visitTime, b.partySize
	if params.VisitDate != nil {
		date = *params.VisitDate
	}
	if params.VisitTime != nil {
		timeOfDay = *params.VisitTime
	}
	if params.PartySize != nil {
		party = *params.PartySize
	}
	return date, timeOfDay, party
}

// IsMove reports whether the update targets a different slot.
func (b *Booking) IsMove(params UpdateParams) bool {
	date, timeOfDay, _ := b.EffectiveVisit(params)
	return !date.Equal(b.visitDate) || timeOfDay != b.visitTime
}

// ApplyUpdate applies field-level diffs and returns the map of changed
// fields with their new values. Only fields that actually differ count as
// changed; an update with identical values is a no-op that leaves updatedAt
// untouched. Cancelled bookings reject any update.
func (b *Booking) ApplyUpdate(params UpdateParams) (map[string]any, error) {
	if b.status == StatusCancelled {
		return nil, domain.NewConflictError("cannot update a cancelled booking")
	}

	updates := make(map[string]any)
	if params.VisitDate != nil && !params.VisitDate.Equal(b.visitDate) {
		b.visitDate = *params.VisitDate
		updates["visit_date"] = b.visitDate.Format("2006-01-02")
	}
	if params.VisitTime != nil && *params.VisitTime != b.visitTime {
		b.visitTime = *params.VisitTime
		updates["visit_time"] = b.visitTime
	}
	if params.PartySize != nil && *params.PartySize != b.partySize {
		b.partySize = *params.PartySize
		updates["party_size"] = b.partySize
	}
	if params.SpecialRequests != nil && *params.SpecialRequests != b.specialRequests {
		b.specialRequests = *params.SpecialRequests
		updates["special_requests"] = b.specialRequests
	}
	if params.IsLeaveTimeConfirmed != nil && *params.IsLeaveTimeConfirmed != b.isLeaveTimeConfirmed {
		b.isLeaveTimeConfirmed = *params.IsLeaveTimeConfirmed
		updates["is_leave_time_confirmed"] = b.isLeaveTimeConfirmed
	}

	if len(updates) > 0 {
		b.updatedAt = time.Now().UTC()
	}
	return updates, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
