package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tablenest/service-booking/internal/domain"
	customerDomain "github.com/tablenest/service-booking/internal/domain/customer"
	"gorm.io/gorm"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID                                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title                             string    `gorm:"size:20"`
	FirstName                         string    `gorm:"size:100"`
	Surname                           string    `gorm:"size:100"`
	MobileCountryCode                 string    `gorm:"size:10"`
	Mobile                            string    `gorm:"size:30"`
	PhoneCountryCode                  string    `gorm:"size:10"`
	Phone                             string    `gorm:"size:30"`
	Email                             string    `gorm:"index;size:255"`
	ReceiveEmailMarketing             bool      `gorm:"not null;default:false"`
	ReceiveSmsMarketing               bool      `gorm:"not null;default:false"`
	GroupEmailMarketingOptInText      string    `gorm:"size:500"`
	GroupSmsMarketingOptInText        string    `gorm:"size:500"`
	ReceiveRestaurantEmailMarketing   bool      `gorm:"not null;default:false"`
	ReceiveRestaurantSmsMarketing     bool      `gorm:"not null;default:false"`
	RestaurantEmailMarketingOptInText string    `gorm:"size:500"`
	RestaurantSmsMarketingOptInText   string    `gorm:"size:500"`
	CreatedAt                         time.Time `gorm:"not null"`
	UpdatedAt                         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string {
	return "customers"
}

// GormCustomerRepository is the GORM-based implementation of customer.Repository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID retrieves a customer by its unique identifier.
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// FindByEmail retrieves the customer matching the email, the dedup key for
// guests booking repeatedly.
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("customer", email)
		}
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// Save persists a new customer record.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	details := c.Details()
	return &CustomerModel{
		ID:                                c.ID(),
		Title:                             details.Title,
		FirstName:                         details.FirstName,
		Surname:                           details.Surname,
		MobileCountryCode:                 details.MobileCountryCode,
		Mobile:                            details.Mobile,
		PhoneCountryCode:                  details.PhoneCountryCode,
		Phone:                             details.Phone,
		Email:                             details.Email,
		ReceiveEmailMarketing:             details.ReceiveEmailMarketing,
		ReceiveSmsMarketing:               details.ReceiveSMSMarketing,
		GroupEmailMarketingOptInText:      details.GroupEmailMarketingOptInText,
		GroupSmsMarketingOptInText:        details.GroupSMSMarketingOptInText,
		ReceiveRestaurantEmailMarketing:   details.ReceiveRestaurantEmailMarketing,
		ReceiveRestaurantSmsMarketing:     details.ReceiveRestaurantSMSMarketing,
		RestaurantEmailMarketingOptInText: details.RestaurantEmailMarketingOptInText,
		RestaurantSmsMarketingOptInText:   details.RestaurantSMSMarketingOptInText,
		CreatedAt:                         c.CreatedAt(),
		UpdatedAt:                         c.UpdatedAt(),
	}
}

func toDomainCustomer(m *CustomerModel) *customerDomain.Customer {
	details := customerDomain.ContactDetails{
		Title:                             m.Title,
		FirstName:                         m.FirstName,
		Surname:                           m.Surname,
		MobileCountryCode:                 m.MobileCountryCode,
		Mobile:                            m.Mobile,
		PhoneCountryCode:                  m.PhoneCountryCode,
		Phone:                             m.Phone,
		Email:                             m.Email,
		ReceiveEmailMarketing:             m.ReceiveEmailMarketing,
		ReceiveSMSMarketing:               m.ReceiveSmsMarketing,
		GroupEmailMarketingOptInText:      m.GroupEmailMarketingOptInText,
		GroupSMSMarketingOptInText:        m.GroupSmsMarketingOptInText,
		ReceiveRestaurantEmailMarketing:   m.ReceiveRestaurantEmailMarketing,
		ReceiveRestaurantSMSMarketing:     m.ReceiveRestaurantSmsMarketing,
		RestaurantEmailMarketingOptInText: m.RestaurantEmailMarketingOptInText,
		RestaurantSMSMarketingOptInText:   m.RestaurantSmsMarketingOptInText,
	}
	return customerDomain.Reconstruct(m.ID, details, m.CreatedAt, m.UpdatedAt)
}
