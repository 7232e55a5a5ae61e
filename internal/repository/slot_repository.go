package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tablenest/service-booking/internal/domain"
	slotDomain "github.com/tablenest/service-booking/internal/domain/slot"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AvailabilitySlotModel is the GORM model for the availability_slots table.
// (restaurant_id, date, time) is the unique slot key.
type AvailabilitySlotModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slot_key"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:idx_slot_key"`
	Time         string    `gorm:"size:5;not null;uniqueIndex:idx_slot_key"`
	MaxPartySize int       `gorm:"not null"`
	Available    bool      `gorm:"not null;default:true"`
	Version      int64     `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AvailabilitySlotModel) TableName() string {
	return "availability_slots"
}

// GormSlotRepository is the GORM-based implementation of slot.Repository.
type GormSlotRepository struct {
	db *gorm.DB
}

// NewGormSlotRepository creates a new GormSlotRepository.
func NewGormSlotRepository(db *gorm.DB) *GormSlotRepository {
	return &GormSlotRepository{db: db}
}

// FindForUpdate retrieves the slot for (restaurant, date, time) with a
// SELECT ... FOR UPDATE row lock, serializing concurrent mutators of the
// same slot for the rest of the transaction.
func (r *GormSlotRepository) FindForUpdate(ctx context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string) (*slotDomain.AvailabilitySlot, error) {
	var model AvailabilitySlotModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("restaurant_id = ? AND date = ? AND time = ?", restaurantID, date.Format("2006-01-02"), timeOfDay).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			key := fmt.Sprintf("%s %s", date.Format("2006-01-02"), timeOfDay)
			return nil, domain.NewNotFoundError("availability slot", key)
		}
		return nil, fmt.Errorf("failed to find availability slot: %w", err)
	}
	return toDomainSlot(&model), nil
}

// Update persists the slot's availability flag with optimistic locking on
// the version column.
func (r *GormSlotRepository) Update(ctx context.Context, s *slotDomain.AvailabilitySlot) error {
	// IncrementVersion was called, so the row must still hold version - 1.
	expectedVersion := s.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&AvailabilitySlotModel{}).
		Where("id = ? AND version = ?", s.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"available":  s.Available(),
			"version":    s.Version(),
			"updated_at": s.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update availability slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("availability slot was modified by another transaction")
	}
	return nil
}

func toDomainSlot(m *AvailabilitySlotModel) *slotDomain.AvailabilitySlot {
	return slotDomain.Reconstruct(
		m.ID,
		m.RestaurantID,
		m.Date,
		m.Time,
		m.MaxPartySize,
		m.Available,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
