package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	seedRestaurantName = "TheHungryUnicorn"
	seedMaxPartySize   = 8
	seedDays           = 30
)

// seedTimes are the lunch and dinner services offered in half-hour steps.
var seedTimes = []string{
	"12:00", "12:30", "13:00", "13:30",
	"19:00", "19:30", "20:00", "20:30",
}

var seedReasons = []CancellationReasonModel{
	{ID: 1, Reason: "Customer Request", Description: "Customer requested cancellation"},
	{ID: 2, Reason: "Restaurant Closure", Description: "Restaurant temporarily closed"},
	{ID: 3, Reason: "Weather", Description: "Cancelled due to weather conditions"},
	{ID: 4, Reason: "Emergency", Description: "Emergency cancellation"},
	{ID: 5, Reason: "No Show", Description: "Customer did not show up"},
}

// SeedReferenceData populates the demo restaurant, the cancellation reason
// catalogue and a rolling window of availability slots. It is idempotent and
// only used with dev auto-migrate; production schemas are seeded by SQL
// migrations instead.
func SeedReferenceData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&RestaurantModel{}).Where("name = ?", seedRestaurantName).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count > 0 {
		log.Info("reference data already seeded")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		restaurant := RestaurantModel{
			ID:            uuid.New(),
			Name:          seedRestaurantName,
			MicrositeName: seedRestaurantName,
			CreatedAt:     now,
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return fmt.Errorf("failed to seed restaurant: %w", err)
		}

		if err := tx.Create(&seedReasons).Error; err != nil {
			return fmt.Errorf("failed to seed cancellation reasons: %w", err)
		}

		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		slots := make([]AvailabilitySlotModel, 0, seedDays*len(seedTimes))
		for day := 0; day < seedDays; day++ {
			date := today.AddDate(0, 0, day)
			for _, t := range seedTimes {
				slots = append(slots, AvailabilitySlotModel{
					ID:           uuid.New(),
					RestaurantID: restaurant.ID,
					Date:         date,
					Time:         t,
					MaxPartySize: seedMaxPartySize,
					Available:    true,
					Version:      1,
					CreatedAt:    now,
					UpdatedAt:    now,
				})
			}
		}
		if err := tx.CreateInBatches(&slots, 100).Error; err != nil {
			return fmt.Errorf("failed to seed availability slots: %w", err)
		}

		log.Info("reference data seeded",
			zap.String("restaurant", seedRestaurantName),
			zap.Int("slots", len(slots)),
		)
		return nil
	})
}
