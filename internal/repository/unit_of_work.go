package repository

import (
	"context"

	"github.com/tablenest/service-booking/internal/application"
	"gorm.io/gorm"
)

// GormUnitOfWork runs application callbacks inside a single GORM
// transaction. Slot rows are locked with SELECT ... FOR UPDATE by the slot
// repository, so concurrent mutators of the same slot serialize here.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute opens a transaction, hands transaction-scoped repositories to fn,
// and commits on nil or rolls back on error.
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos application.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := application.Repositories{
			Restaurants: NewGormRestaurantRepository(tx),
			Reasons:     NewGormCancellationReasonRepository(tx),
			Customers:   NewGormCustomerRepository(tx),
			Bookings:    NewGormBookingRepository(tx),
			Slots:       NewGormSlotRepository(tx),
		}
		return fn(ctx, repos)
	})
}
