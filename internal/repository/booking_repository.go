package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tablenest/service-booking/internal/domain"
	bookingDomain "github.com/tablenest/service-booking/internal/domain/booking"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingReference     string    `gorm:"uniqueIndex;not null;size:7"`
	RestaurantID         uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID           uuid.UUID `gorm:"type:uuid;index;not null"`
	VisitDate            time.Time `gorm:"type:date;not null;index"`
	VisitTime            string    `gorm:"size:5;not null"`
	PartySize            int       `gorm:"not null"`
	ChannelCode          string    `gorm:"not null;size:20"`
	SpecialRequests      string    `gorm:"size:1000"`
	IsLeaveTimeConfirmed bool      `gorm:"not null;default:false"`
	RoomNumber           string    `gorm:"size:20"`
	Status               string    `gorm:"not null;size:20;index"`
	CancellationReasonID *int64    `gorm:""`
	Version              int64     `gorm:"not null;default:1"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByReference retrieves a booking by its public reference within a restaurant.
func (r *GormBookingRepository) FindByReference(ctx context.Context, restaurantID uuid.UUID, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("booking_reference = ? AND restaurant_id = ?", reference, restaurantID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", reference)
		}
		return nil, fmt.Errorf("failed to find booking by reference: %w", err)
	}
	return toDomainBooking(&model)
}

// ReferenceExists reports whether any booking already uses the reference.
func (r *GormBookingRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("booking_reference = ?", reference).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booking reference: %w", err)
	}
	return count > 0, nil
}

// CountConfirmedOnSlot counts confirmed bookings targeting the slot
// (restaurant, date, time), optionally excluding one booking for reschedule
// self-comparisons. The slot ledger recomputes availability from this count.
func (r *GormBookingRepository) CountConfirmedOnSlot(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, excludeBookingID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("restaurant_id = ? AND visit_date = ? AND visit_time = ? AND status = ?",
			restaurantID, date.Format("2006-01-02"), timeOfDay, string(bookingDomain.StatusConfirmed))
	if excludeBookingID != nil {
		query = query.Where("id <> ?", *excludeBookingID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count confirmed bookings on slot: %w", err)
	}
	return count, nil
}

// List retrieves a restaurant's bookings sorted by visit date then visit
// time, both descending, applying the optional status and date-range filters.
func (r *GormBookingRepository) List(ctx context.Context, restaurantID uuid.UUID, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DateFrom != nil {
		query = query.Where("visit_date >= ?", filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		query = query.Where("visit_date <= ?", filter.DateTo.Format("2006-01-02"))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []BookingModel
	err := query.
		Order("visit_date DESC").
		Order("visit_time DESC").
		Offset(filter.Offset).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1 since
	// IncrementVersion was called).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"visit_date":              model.VisitDate.Format("2006-01-02"),
			"visit_time":              model.VisitTime,
			"party_size":              model.PartySize,
			"special_requests":        model.SpecialRequests,
			"is_leave_time_confirmed": model.IsLeaveTimeConfirmed,
			"room_number":             model.RoomNumber,
			"status":                  model.Status,
			"cancellation_reason_id":  model.CancellationReasonID,
			"version":                 model.Version,
			"updated_at":              model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                   bk.ID(),
		BookingReference:     bk.Reference(),
		RestaurantID:         bk.RestaurantID(),
		CustomerID:           bk.CustomerID(),
		VisitDate:            bk.VisitDate(),
		VisitTime:            bk.VisitTime(),
		PartySize:            bk.PartySize(),
		ChannelCode:          bk.ChannelCode(),
		SpecialRequests:      bk.SpecialRequests(),
		IsLeaveTimeConfirmed: bk.IsLeaveTimeConfirmed(),
		RoomNumber:           bk.RoomNumber(),
		Status:               string(bk.Status()),
		CancellationReasonID: bk.CancellationReasonID(),
		Version:              bk.Version(),
		CreatedAt:            bk.CreatedAt(),
		UpdatedAt:            bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingReference,
		m.RestaurantID,
		m.CustomerID,
		m.VisitDate,
		m.VisitTime,
		m.PartySize,
		m.ChannelCode,
		m.SpecialRequests,
		m.IsLeaveTimeConfirmed,
		m.RoomNumber,
		status,
		m.CancellationReasonID,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
