package customer

import (
	"time"

	"github.com/google/uuid"
)

// ContactDetails holds the contact and consent fields captured when a guest
// books. Every field is optional; the four marketing flags are independent.
type ContactDetails struct {
	Title                             string
	FirstName                         string
	Surname                           string
	MobileCountryCode                 string
	Mobile                            string
	PhoneCountryCode                  string
	Phone                             string
	Email                             string
	ReceiveEmailMarketing             bool
	ReceiveSMSMarketing               bool
	GroupEmailMarketingOptInText      string
	GroupSMSMarketingOptInText        string
	ReceiveRestaurantEmailMarketing   bool
	ReceiveRestaurantSMSMarketing     bool
	RestaurantEmailMarketingOptInText string
	RestaurantSMSMarketingOptInText   string
}

// Customer is the aggregate root for a guest record. Customers are created
// lazily on first booking, deduplicated by email, and never deleted.
type Customer struct {
	id        uuid.UUID
	details   ContactDetails
	createdAt time.Time
	updatedAt time.Time
}

// NewCustomer creates a new customer record from the supplied contact details.
func NewCustomer(details ContactDetails) *Customer {
	now := time.Now().UTC()
	return &Customer{
		id:        uuid.New(),
		details:   details,
		createdAt: now,
		updatedAt: now,
	}
}

// Reconstruct rebuilds a Customer from persistence.
func Reconstruct(id uuid.UUID, details ContactDetails, createdAt, updatedAt time.Time) *Customer {
	return &Customer{
		id:        id,
		details:   details,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (c *Customer) ID() uuid.UUID           { return c.id }
func (c *Customer) Details() ContactDetails { return c.details }
func (c *Customer) Email() string           { return c.details.Email }
func (c *Customer) CreatedAt() time.Time    { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time    { return c.updatedAt }
