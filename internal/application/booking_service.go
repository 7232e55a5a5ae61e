package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tablenest/service-booking/internal/domain"
	"github.com/tablenest/service-booking/internal/domain/booking"
	"github.com/tablenest/service-booking/internal/domain/customer"
	"github.com/tablenest/service-booking/internal/domain/restaurant"
	"github.com/tablenest/service-booking/internal/domain/slot"
	"go.uber.org/zap"
)

// dateLayout is the wire format for visit dates.
const dateLayout = "2006-01-02"

// maxReferenceAttempts bounds the collision-retry loop for booking
// references. The keyspace is 36^7 so exhausting this means something is
// badly wrong with the store.
const maxReferenceAttempts = 10

// Repositories bundles the transaction-scoped persistence contracts handed
// to a unit of work callback. Every repository reads and writes through the
// same database transaction.
type Repositories struct {
	Restaurants restaurant.Repository
	Reasons     restaurant.CancellationReasonRepository
	Customers   customer.Repository
	Bookings    booking.Repository
	Slots       slot.Repository
}

// UnitOfWork executes a function inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// failed precondition never leaves partial booking or slot state behind.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// CreateBookingRequest holds the validated fields of a booking creation.
type CreateBookingRequest struct {
	VisitDate            time.Time
	VisitTime            string
	PartySize            int
	ChannelCode          string
	SpecialRequests      string
	IsLeaveTimeConfirmed bool
	RoomNumber           string
	Customer             customer.ContactDetails
}

// CancelBookingRequest holds the fields of a cancellation.
type CancelBookingRequest struct {
	MicrositeName        string
	CancellationReasonID int64
}

// ListBookingsRequest narrows a restaurant's booking listing.
type ListBookingsRequest struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// CustomerDTO is the response representation of a guest.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FirstName string    `json:"first_name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	Phone     string    `json:"phone,omitempty"`
}

// CancellationReasonDTO is the response representation of a catalogue row.
type CancellationReasonDTO struct {
	ID          int64  `json:"id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// BookingConfirmationDTO is returned from a successful creation.
type BookingConfirmationDTO struct {
	BookingReference     string      `json:"booking_reference"`
	BookingID            uuid.UUID   `json:"booking_id"`
	Restaurant           string      `json:"restaurant"`
	VisitDate            string      `json:"visit_date"`
	VisitTime            string      `json:"visit_time"`
	PartySize            int         `json:"party_size"`
	ChannelCode          string      `json:"channel_code"`
	SpecialRequests      string      `json:"special_requests"`
	IsLeaveTimeConfirmed bool        `json:"is_leave_time_confirmed"`
	RoomNumber           string      `json:"room_number"`
	Customer             CustomerDTO `json:"customer"`
	Status               string      `json:"status"`
	CreatedAt            time.Time   `json:"created_at"`
}

// BookingDetailDTO is the full booking view returned from a lookup.
type BookingDetailDTO struct {
	BookingReference     string                 `json:"booking_reference"`
	BookingID            uuid.UUID              `json:"booking_id"`
	Restaurant           string                 `json:"restaurant"`
	VisitDate            string                 `json:"visit_date"`
	VisitTime            string                 `json:"visit_time"`
	PartySize            int                    `json:"party_size"`
	ChannelCode          string                 `json:"channel_code"`
	SpecialRequests      string                 `json:"special_requests"`
	IsLeaveTimeConfirmed bool                   `json:"is_leave_time_confirmed"`
	RoomNumber           string                 `json:"room_number"`
	Status               string                 `json:"status"`
	Customer             CustomerDTO            `json:"customer"`
	CancellationReason   *CancellationReasonDTO `json:"cancellation_reason"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// CancellationDTO is returned from a successful cancellation.
type CancellationDTO struct {
	BookingReference     string    `json:"booking_reference"`
	BookingID            uuid.UUID `json:"booking_id"`
	Restaurant           string    `json:"restaurant"`
	MicrositeName        string    `json:"microsite_name"`
	CancellationReasonID int64     `json:"cancellation_reason_id"`
	CancellationReason   string    `json:"cancellation_reason"`
	Status               string    `json:"status"`
	CancelledAt          time.Time `json:"cancelled_at"`
	Message              string    `json:"message"`
}

// UpdateResultDTO reports the outcome of a booking update: the map of fields
// that actually changed, or status "no_changes" when the request matched the
// booking's current values.
type UpdateResultDTO struct {
	BookingReference string         `json:"booking_reference"`
	BookingID        uuid.UUID      `json:"booking_id"`
	Restaurant       string         `json:"restaurant"`
	Updates          map[string]any `json:"updates"`
	Status           string         `json:"status"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Message          string         `json:"message"`
}

// BookingSummaryDTO is the compact listing row for the owner dashboard.
type BookingSummaryDTO struct {
	BookingReference string      `json:"booking_reference"`
	BookingID        uuid.UUID   `json:"booking_id"`
	Restaurant       string      `json:"restaurant"`
	VisitDate        string      `json:"visit_date"`
	VisitTime        string      `json:"visit_time"`
	PartySize        int         `json:"party_size"`
	Status           string      `json:"status"`
	Customer         CustomerDTO `json:"customer"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// BookingService orchestrates the booking lifecycle: create, lookup, update,
// cancel and list. Every mutation runs in one unit of work that also carries
// the slot ledger updates, so booking rows and slot availability can never
// drift apart.
type BookingService struct {
	uow    UnitOfWork
	logger *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(uow UnitOfWork, logger *zap.Logger) *BookingService {
	return &BookingService{uow: uow, logger: logger}
}

// CreateBooking books a confirmed visit against an available slot, creating
// or reusing the customer record and occupying the slot atomically.
func (s *BookingService) CreateBooking(ctx context.Context, restaurantName string, req CreateBookingRequest) (*BookingConfirmationDTO, error) {
	var result *BookingConfirmationDTO

	err := s.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		rest, err := repos.Restaurants.FindByName(ctx, restaurantName)
		if err != nil {
			return err
		}

		ledger := slot.NewLedger(repos.Slots, repos.Bookings)
		sl, err := ledger.Lookup(ctx, rest.ID(), req.VisitDate, req.VisitTime)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return domain.NewInvalidRequestError("no availability slot found for that date/time")
			}
			return err
		}

		if !sl.FitsParty(req.PartySize) {
			return domain.NewInvalidRequestError("party size exceeds slot capacity")
		}
		free, err := ledger.IsFreeFor(ctx, sl, req.PartySize, nil)
		if err != nil {
			return err
		}
		if !free {
			return domain.NewInvalidRequestError("selected time slot is not available")
		}

		cust, err := s.resolveCustomer(ctx, repos, req.Customer)
		if err != nil {
			return err
		}

		reference, err := s.generateUniqueReference(ctx, repos)
		if err != nil {
			return err
		}

		bk, err := booking.NewBooking(
			reference,
			rest.ID(),
			cust.ID(),
			req.VisitDate,
			req.VisitTime,
			req.PartySize,
			req.ChannelCode,
			req.SpecialRequests,
			req.IsLeaveTimeConfirmed,
			req.RoomNumber,
		)
		if err != nil {
			return err
		}
		if err := repos.Bookings.Save(ctx, bk); err != nil {
			return err
		}

		if err := ledger.Occupy(ctx, sl); err != nil {
			return err
		}

		result = &BookingConfirmationDTO{
			BookingReference:     bk.Reference(),
			BookingID:            bk.ID(),
			Restaurant:           rest.Name(),
			VisitDate:            bk.VisitDate().Format(dateLayout),
			VisitTime:            bk.VisitTime(),
			PartySize:            bk.PartySize(),
			ChannelCode:          bk.ChannelCode(),
			SpecialRequests:      bk.SpecialRequests(),
			IsLeaveTimeConfirmed: bk.IsLeaveTimeConfirmed(),
			RoomNumber:           bk.RoomNumber(),
			Customer:             toCustomerDTO(cust),
			Status:               bk.Status().String(),
			CreatedAt:            bk.CreatedAt(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_reference", result.BookingReference),
		zap.String("restaurant", restaurantName),
		zap.String("visit_date", result.VisitDate),
		zap.String("visit_time", result.VisitTime),
	)
	return result, nil
}

// GetBooking retrieves the full booking detail, including the resolved
// cancellation reason for cancelled bookings.
func (s *BookingService) GetBooking(ctx context.Context, restaurantName, reference string) (*BookingDetailDTO, error) {
	var result *BookingDetailDTO

	err := s.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		rest, err := repos.Restaurants.FindByName(ctx, restaurantName)
		if err != nil {
			return err
		}
		bk, err := repos.Bookings.FindByReference(ctx, rest.ID(), reference)
		if err != nil {
			return err
		}
		cust, err := repos.Customers.FindByID(ctx, bk.CustomerID())
		if err != nil {
			return err
		}

		var reasonDTO *CancellationReasonDTO
		if bk.Status() == booking.StatusCancelled && bk.CancellationReasonID() != nil {
			reason, err := repos.Reasons.FindReasonByID(ctx, *bk.CancellationReasonID())
			if err != nil {
				// A missing catalogue row renders a null reason; anything
				// else is a real failure.
				var notFound *domain.NotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
			} else {
				reasonDTO = &CancellationReasonDTO{
					ID:          reason.ID,
					Reason:      reason.Reason,
					Description: reason.Description,
				}
			}
		}

		result = &BookingDetailDTO{
			BookingReference:     bk.Reference(),
			BookingID:            bk.ID(),
			Restaurant:           rest.Name(),
			VisitDate:            bk.VisitDate().Format(dateLayout),
			VisitTime:            bk.VisitTime(),
			PartySize:            bk.PartySize(),
			ChannelCode:          bk.ChannelCode(),
			SpecialRequests:      bk.SpecialRequests(),
			IsLeaveTimeConfirmed: bk.IsLeaveTimeConfirmed(),
			RoomNumber:           bk.RoomNumber(),
			Status:               bk.Status().String(),
			Customer:             toCustomerDTO(cust),
			CancellationReason:   reasonDTO,
			CreatedAt:            bk.CreatedAt(),
			UpdatedAt:            bk.UpdatedAt(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateBooking applies a partial edit to a confirmed booking. A change of
// date or time is a move: the target slot must be provisioned and free for
// the effective party size, the old slot is released (recomputed against
// remaining confirmed bookings) and the target occupied, all in one
// transaction. Identical values are a no-op that touches no slot.
func (s *BookingService) UpdateBooking(ctx context.Context, restaurantName, reference string, params booking.UpdateParams) (*UpdateResultDTO, error) {
	var result *UpdateResultDTO

	err := s.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		rest, err := repos.Restaurants.FindByName(ctx, restaurantName)
		if err != nil {
			return err
		}
		bk, err := repos.Bookings.FindByReference(ctx, rest.ID(), reference)
		if err != nil {
			return err
		}
		if bk.Status() == booking.StatusCancelled {
			return domain.NewConflictError("cannot update a cancelled booking")
		}

		ledger := slot.NewLedger(repos.Slots, repos.Bookings)
		if bk.IsMove(params) {
			newDate, newTime, newParty := bk.EffectiveVisit(params)

			target, err := ledger.Lookup(ctx, rest.ID(), newDate, newTime)
			if err != nil {
				return err
			}
			if !target.FitsParty(newParty) {
				return domain.NewInvalidRequestError("party size exceeds slot capacity")
			}
			bookingID := bk.ID()
			free, err := ledger.IsFreeFor(ctx, target, newParty, &bookingID)
			if err != nil {
				return err
			}
			if !free {
				return domain.NewInvalidRequestError("that slot is no longer available")
			}

			if err := ledger.Release(ctx, rest.ID(), bk.VisitDate(), bk.VisitTime(), bk.ID()); err != nil {
				return err
			}
			if err := ledger.Occupy(ctx, target); err != nil {
				return err
			}
		}

		updates, err := bk.ApplyUpdate(params)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			bk.IncrementVersion()
			if err := repos.Bookings.Update(ctx, bk); err != nil {
				return err
			}
		}

		status := "no_changes"
		message := fmt.Sprintf("Booking %s has been checked - no changes made", reference)
		if len(updates) > 0 {
			status = "updated"
			message = fmt.Sprintf("Booking %s has been successfully updated", reference)
		}
		result = &UpdateResultDTO{
			BookingReference: bk.Reference(),
			BookingID:        bk.ID(),
			Restaurant:       rest.Name(),
			Updates:          updates,
			Status:           status,
			UpdatedAt:        bk.UpdatedAt(),
			Message:          message,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking update processed",
		zap.String("booking_reference", reference),
		zap.String("restaurant", restaurantName),
		zap.Int("changed_fields", len(result.Updates)),
	)
	return result, nil
}

// CancelBooking cancels a confirmed booking with a catalogued reason and
// releases its slot if no other confirmed booking still occupies it.
func (s *BookingService) CancelBooking(ctx context.Context, restaurantName, reference string, req CancelBookingRequest) (*CancellationDTO, error) {
	var result *CancellationDTO

	err := s.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		rest, err := repos.Restaurants.FindByName(ctx, restaurantName)
		if err != nil {
			return err
		}
		bk, err := repos.Bookings.FindByReference(ctx, rest.ID(), reference)
		if err != nil {
			return err
		}
		if bk.Status() == booking.StatusCancelled {
			return domain.NewConflictError("booking is already cancelled")
		}

		reason, err := repos.Reasons.FindReasonByID(ctx, req.CancellationReasonID)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return domain.NewInvalidRequestError("invalid cancellation reason")
			}
			return err
		}

		if err := bk.Cancel(reason.ID); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := repos.Bookings.Update(ctx, bk); err != nil {
			return err
		}

		ledger := slot.NewLedger(repos.Slots, repos.Bookings)
		if err := ledger.Release(ctx, rest.ID(), bk.VisitDate(), bk.VisitTime(), bk.ID()); err != nil {
			return err
		}

		result = &CancellationDTO{
			BookingReference:     bk.Reference(),
			BookingID:            bk.ID(),
			Restaurant:           rest.Name(),
			MicrositeName:        req.MicrositeName,
			CancellationReasonID: reason.ID,
			CancellationReason:   reason.Reason,
			Status:               bk.Status().String(),
			CancelledAt:          bk.UpdatedAt(),
			Message:              fmt.Sprintf("Booking %s has been successfully cancelled", reference),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_reference", reference),
		zap.String("restaurant", restaurantName),
		zap.Int64("cancellation_reason_id", result.CancellationReasonID),
	)
	return result, nil
}

// ListBookings returns a restaurant's bookings for the owner dashboard,
// filtered by optional status and inclusive date range, newest visits first.
func (s *BookingService) ListBookings(ctx context.Context, restaurantName string, req ListBookingsRequest) ([]BookingSummaryDTO, error) {
	var result []BookingSummaryDTO

	err := s.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		rest, err := repos.Restaurants.FindByName(ctx, restaurantName)
		if err != nil {
			return err
		}

		filter := booking.ListFilter{
			DateFrom: req.DateFrom,
			DateTo:   req.DateTo,
			Limit:    req.Limit,
			Offset:   req.Offset,
		}
		if req.Status != "" {
			status, err := booking.ParseStatus(req.Status)
			if err != nil {
				return domain.NewInvalidRequestError(fmt.Sprintf("unknown status filter: %s", req.Status))
			}
			filter.Status = &status
		}

		bookings, err := repos.Bookings.List(ctx, rest.ID(), filter)
		if err != nil {
			return err
		}

		result = make([]BookingSummaryDTO, 0, len(bookings))
		for _, bk := range bookings {
			cust, err := repos.Customers.FindByID(ctx, bk.CustomerID())
			if err != nil {
				return err
			}
			result = append(result, BookingSummaryDTO{
				BookingReference: bk.Reference(),
				BookingID:        bk.ID(),
				Restaurant:       rest.Name(),
				VisitDate:        bk.VisitDate().Format(dateLayout),
				VisitTime:        bk.VisitTime(),
				PartySize:        bk.PartySize(),
				Status:           bk.Status().String(),
				Customer:         toCustomerDTO(cust),
				CreatedAt:        bk.CreatedAt(),
				UpdatedAt:        bk.UpdatedAt(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListCancellationReasons returns the static cancellation catalogue.
func (s *BookingService) ListCancellationReasons(ctx context.Context, restaurantName string) ([]CancellationReasonDTO, error) {
	var result []CancellationReasonDTO

	err := s.uow.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		if _, err := repos.Restaurants.FindByName(ctx, restaurantName); err != nil {
			return err
		}
		reasons, err := repos.Reasons.ListReasons(ctx)
		if err != nil {
			return err
		}
		result = make([]CancellationReasonDTO, len(reasons))
		for i, r := range reasons {
			result[i] = CancellationReasonDTO{ID: r.ID, Reason: r.Reason, Description: r.Description}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- Helpers ---

// resolveCustomer reuses the customer matching the email, or creates a new
// record when the email is absent or unknown.
func (s *BookingService) resolveCustomer(ctx context.Context, repos Repositories, details customer.ContactDetails) (*customer.Customer, error) {
	if details.Email != "" {
		existing, err := repos.Customers.FindByEmail(ctx, details.Email)
		if err == nil {
			return existing, nil
		}
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cust := customer.NewCustomer(details)
	if err := repos.Customers.Save(ctx, cust); err != nil {
		return nil, err
	}
	return cust, nil
}

// generateUniqueReference draws references until one does not collide with
// an existing booking, failing after maxReferenceAttempts.
func (s *BookingService) generateUniqueReference(ctx context.Context, repos Repositories) (string, error) {
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		reference, err := booking.GenerateReference()
		if err != nil {
			return "", domain.NewInternalError("reference generation failed", err)
		}
		exists, err := repos.Bookings.ReferenceExists(ctx, reference)
		if err != nil {
			return "", err
		}
		if !exists {
			return reference, nil
		}
	}
	return "", domain.NewInternalError("exhausted booking reference attempts", nil)
}

func toCustomerDTO(c *customer.Customer) CustomerDTO {
	details := c.Details()
	return CustomerDTO{
		ID:        c.ID(),
		Title:     details.Title,
		FirstName: details.FirstName,
		Surname:   details.Surname,
		Email:     details.Email,
		Mobile:    details.Mobile,
		Phone:     details.Phone,
	}
}
