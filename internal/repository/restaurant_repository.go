package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tablenest/service-booking/internal/domain"
	restaurantDomain "github.com/tablenest/service-booking/internal/domain/restaurant"
	"gorm.io/gorm"
)

// RestaurantModel is the GORM model for the restaurants table.
type RestaurantModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"uniqueIndex;not null;size:100"`
	MicrositeName string    `gorm:"size:100"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RestaurantModel) TableName() string {
	return "restaurants"
}

// CancellationReasonModel is the GORM model for the static cancellation catalogue.
type CancellationReasonModel struct {
	ID          int64  `gorm:"primaryKey"`
	Reason      string `gorm:"not null;size:100"`
	Description string `gorm:"size:255"`
}

// TableName returns the table name for the GORM model.
func (CancellationReasonModel) TableName() string {
	return "cancellation_reasons"
}

// GormRestaurantRepository is the GORM-based implementation of restaurant.Repository.
type GormRestaurantRepository struct {
	db *gorm.DB
}

// NewGormRestaurantRepository creates a new GormRestaurantRepository.
func NewGormRestaurantRepository(db *gorm.DB) *GormRestaurantRepository {
	return &GormRestaurantRepository{db: db}
}

// FindByName retrieves a restaurant by its unique name.
func (r *GormRestaurantRepository) FindByName(ctx context.Context, name string) (*restaurantDomain.Restaurant, error) {
	var model RestaurantModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("restaurant", name)
		}
		return nil, fmt.Errorf("failed to find restaurant by name: %w", err)
	}
	return restaurantDomain.Reconstruct(model.ID, model.Name, model.MicrositeName, model.CreatedAt), nil
}

// GormCancellationReasonRepository is the GORM-based implementation of
// restaurant.CancellationReasonRepository.
type GormCancellationReasonRepository struct {
	db *gorm.DB
}

// NewGormCancellationReasonRepository creates a new GormCancellationReasonRepository.
func NewGormCancellationReasonRepository(db *gorm.DB) *GormCancellationReasonRepository {
	return &GormCancellationReasonRepository{db: db}
}

// FindReasonByID retrieves a single cancellation reason.
func (r *GormCancellationReasonRepository) FindReasonByID(ctx context.Context, id int64) (*restaurantDomain.CancellationReason, error) {
	var model CancellationReasonModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("cancellation reason", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find cancellation reason: %w", err)
	}
	return &restaurantDomain.CancellationReason{
		ID:          model.ID,
		Reason:      model.Reason,
		Description: model.Description,
	}, nil
}

// ListReasons returns the full catalogue ordered by ID.
func (r *GormCancellationReasonRepository) ListReasons(ctx context.Context) ([]restaurantDomain.CancellationReason, error) {
	var models []CancellationReasonModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list cancellation reasons: %w", err)
	}
	reasons := make([]restaurantDomain.CancellationReason, len(models))
	for i, m := range models {
		reasons[i] = restaurantDomain.CancellationReason{
			ID:          m.ID,
			Reason:      m.Reason,
			Description: m.Description,
		}
	}
	return reasons, nil
}
