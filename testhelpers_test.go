//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tablenest/service-booking/internal/application"
	"github.com/tablenest/service-booking/internal/domain/customer"
	"github.com/tablenest/service-booking/internal/repository"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// setupContainers starts a PostgreSQL testcontainer and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.RestaurantModel{},
		&repository.CancellationReasonModel{},
		&repository.CustomerModel{},
		&repository.AvailabilitySlotModel{},
		&repository.BookingModel{},
	))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// setupBookingService wires the service over a real transactional unit of work.
func setupBookingService(db *gorm.DB) *application.BookingService {
	logger, _ := zap.NewDevelopment()
	uow := repository.NewGormUnitOfWork(db)
	return application.NewBookingService(uow, logger)
}

// seedRestaurant inserts a restaurant with cancellation reasons and a handful
// of availability slots on the given date.
func seedRestaurant(t *testing.T, db *gorm.DB, name string, date time.Time, times ...string) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()

	restaurant := repository.RestaurantModel{
		ID:            uuid.New(),
		Name:          name,
		MicrositeName: name,
		CreatedAt:     now,
	}
	require.NoError(t, db.Create(&restaurant).Error, "failed to seed restaurant")

	reasons := []repository.CancellationReasonModel{
		{ID: 1, Reason: "Customer Request", Description: "Customer requested cancellation"},
		{ID: 2, Reason: "Restaurant Closure", Description: "Restaurant temporarily closed"},
	}
	require.NoError(t, db.Create(&reasons).Error, "failed to seed cancellation reasons")

	seedSlots(t, db, restaurant.ID, date, times...)

	return restaurant.ID
}

// seedSlots provisions available slots on the given date.
func seedSlots(t *testing.T, db *gorm.DB, restaurantID uuid.UUID, date time.Time, times ...string) {
	t.Helper()
	now := time.Now().UTC()
	for _, timeOfDay := range times {
		slot := repository.AvailabilitySlotModel{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			Date:         date,
			Time:         timeOfDay,
			MaxPartySize: 8,
			Available:    true,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, db.Create(&slot).Error, "failed to seed slot")
	}
}

// slotState reads the availability flag of a slot straight from the table.
func slotState(t *testing.T, db *gorm.DB, restaurantID uuid.UUID, date time.Time, timeOfDay string) repository.AvailabilitySlotModel {
	t.Helper()
	var model repository.AvailabilitySlotModel
	err := db.Where("restaurant_id = ? AND date = ? AND time = ?",
		restaurantID, date.Format("2006-01-02"), timeOfDay).First(&model).Error
	require.NoError(t, err, "failed to read slot state")
	return model
}

// guestDetails builds a create request for the given slot and guest email.
func guestDetails(date time.Time, timeOfDay string, partySize int, email string) application.CreateBookingRequest {
	return application.CreateBookingRequest{
		VisitDate:   date,
		VisitTime:   timeOfDay,
		PartySize:   partySize,
		ChannelCode: "ONLINE",
		Customer: customer.ContactDetails{
			FirstName: "Integration",
			Surname:   "Guest",
			Email:     email,
		},
	}
}
