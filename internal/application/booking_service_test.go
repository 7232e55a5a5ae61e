package application

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablenest/service-booking/internal/domain"
	"github.com/tablenest/service-booking/internal/domain/booking"
	"github.com/tablenest/service-booking/internal/domain/customer"
	"github.com/tablenest/service-booking/internal/domain/restaurant"
	"github.com/tablenest/service-booking/internal/domain/slot"
	"go.uber.org/zap"
)

// memoryStore backs the in-memory repositories for service tests.
type memoryStore struct {
	restaurants map[string]*restaurant.Restaurant
	reasons     map[int64]restaurant.CancellationReason
	customers   map[uuid.UUID]*customer.Customer
	bookings    map[uuid.UUID]*booking.Booking
	slots       map[string]*slot.AvailabilitySlot

	// reasonLookupErr, when set, fails every cancellation reason lookup.
	reasonLookupErr error
}

func storeSlotKey(restaurantID uuid.UUID, date time.Time, timeOfDay string) string {
	return restaurantID.String() + "|" + date.Format("2006-01-02") + "|" + timeOfDay
}

type memRestaurantRepo struct{ store *memoryStore }

func (r *memRestaurantRepo) FindByName(_ context.Context, name string) (*restaurant.Restaurant, error) {
	rest, ok := r.store.restaurants[name]
	if !ok {
		return nil, domain.NewNotFoundError("restaurant", name)
	}
	return rest, nil
}

type memReasonRepo struct{ store *memoryStore }

func (r *memReasonRepo) FindReasonByID(_ context.Context, id int64) (*restaurant.CancellationReason, error) {
	if r.store.reasonLookupErr != nil {
		return nil, r.store.reasonLookupErr
	}
	reason, ok := r.store.reasons[id]
	if !ok {
		return nil, domain.NewNotFoundError("cancellation reason", strconv.FormatInt(id, 10))
	}
	return &reason, nil
}

func (r *memReasonRepo) ListReasons(_ context.Context) ([]restaurant.CancellationReason, error) {
	reasons := make([]restaurant.CancellationReason, 0, len(r.store.reasons))
	for id := int64(1); id <= int64(len(r.store.reasons)); id++ {
		reasons = append(reasons, r.store.reasons[id])
	}
	return reasons, nil
}

type memCustomerRepo struct{ store *memoryStore }

func (r *memCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	c, ok := r.store.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("customer", id.String())
	}
	return c, nil
}

func (r *memCustomerRepo) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	for _, c := range r.store.customers {
		if c.Email() == email {
			return c, nil
		}
	}
	return nil, domain.NewNotFoundError("customer", email)
}

func (r *memCustomerRepo) Save(_ context.Context, c *customer.Customer) error {
	r.store.customers[c.ID()] = c
	return nil
}

type memBookingRepo struct{ store *memoryStore }

func (r *memBookingRepo) FindByReference(_ context.Context, restaurantID uuid.UUID, reference string) (*booking.Booking, error) {
	for _, b := range r.store.bookings {
		if b.RestaurantID() == restaurantID && b.Reference() == reference {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", reference)
}

func (r *memBookingRepo) ReferenceExists(_ context.Context, reference string) (bool, error) {
	for _, b := range r.store.bookings {
		if b.Reference() == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBookingRepo) CountConfirmedOnSlot(_ context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string, excludeBookingID *uuid.UUID) (int64, error) {
	var count int64
	for _, b := range r.store.bookings {
		if excludeBookingID != nil && b.ID() == *excludeBookingID {
			continue
		}
		if b.RestaurantID() == restaurantID &&
			b.Status() == booking.StatusConfirmed &&
			b.VisitDate().Equal(date) &&
			b.VisitTime() == timeOfDay {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) List(_ context.Context, restaurantID uuid.UUID, filter booking.ListFilter) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.store.bookings {
		if b.RestaurantID() != restaurantID {
			continue
		}
		if filter.Status != nil && b.Status() != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && b.VisitDate().Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && b.VisitDate().After(*filter.DateTo) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *memBookingRepo) Save(_ context.Context, b *booking.Booking) error {
	r.store.bookings[b.ID()] = b
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	if _, ok := r.store.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("booking", b.Reference())
	}
	r.store.bookings[b.ID()] = b
	return nil
}

type memSlotRepo struct{ store *memoryStore }

func (r *memSlotRepo) FindForUpdate(_ context.Context, restaurantID uuid.UUID, date time.Time, timeOfDay string) (*slot.AvailabilitySlot, error) {
	s, ok := r.store.slots[storeSlotKey(restaurantID, date, timeOfDay)]
	if !ok {
		return nil, domain.NewNotFoundError("availability slot", timeOfDay)
	}
	return s, nil
}

func (r *memSlotRepo) Update(_ context.Context, s *slot.AvailabilitySlot) error {
	r.store.slots[storeSlotKey(s.RestaurantID(), s.Date(), s.TimeOfDay())] = s
	return nil
}

// memUnitOfWork serializes callbacks with a mutex, standing in for the row
// locks the real transaction takes on slot rows.
type memUnitOfWork struct {
	mu    sync.Mutex
	store *memoryStore
}

func (u *memUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx, Repositories{
		Restaurants: &memRestaurantRepo{store: u.store},
		Reasons:     &memReasonRepo{store: u.store},
		Customers:   &memCustomerRepo{store: u.store},
		Bookings:    &memBookingRepo{store: u.store},
		Slots:       &memSlotRepo{store: u.store},
	})
}

type serviceFixture struct {
	service    *BookingService
	store      *memoryStore
	restaurant *restaurant.Restaurant
	visitDate  time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	rest, err := restaurant.NewRestaurant("TheHungryUnicorn", "TheHungryUnicorn")
	require.NoError(t, err)

	store := &memoryStore{
		restaurants: map[string]*restaurant.Restaurant{rest.Name(): rest},
		reasons: map[int64]restaurant.CancellationReason{
			1: {ID: 1, Reason: "Customer Request", Description: "Customer requested cancellation"},
			2: {ID: 2, Reason: "Restaurant Closure", Description: "Restaurant temporarily closed"},
		},
		customers: map[uuid.UUID]*customer.Customer{},
		bookings:  map[uuid.UUID]*booking.Booking{},
		slots:     map[string]*slot.AvailabilitySlot{},
	}

	visitDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	for _, timeOfDay := range []string{"12:00", "12:30", "19:00", "19:30"} {
		now := time.Now().UTC()
		s := slot.Reconstruct(uuid.New(), rest.ID(), visitDate, timeOfDay, 8, true, 1, now, now)
		store.slots[storeSlotKey(rest.ID(), visitDate, timeOfDay)] = s
	}

	uow := &memUnitOfWork{store: store}
	return &serviceFixture{
		service:    NewBookingService(uow, zap.NewNop()),
		store:      store,
		restaurant: rest,
		visitDate:  visitDate,
	}
}

func (f *serviceFixture) slotAt(timeOfDay string) *slot.AvailabilitySlot {
	return f.store.slots[storeSlotKey(f.restaurant.ID(), f.visitDate, timeOfDay)]
}

func createRequest(visitDate time.Time, visitTime string, partySize int, email string) CreateBookingRequest {
	return CreateBookingRequest{
		VisitDate:   visitDate,
		VisitTime:   visitTime,
		PartySize:   partySize,
		ChannelCode: "ONLINE",
		Customer: customer.ContactDetails{
			FirstName: "Alice",
			Surname:   "Smith",
			Email:     email,
		},
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("confirms booking and occupies slot", func(t *testing.T) {
		f := newServiceFixture(t)

		result, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		assert.Len(t, result.BookingReference, booking.ReferenceLength)
		assert.Equal(t, "confirmed", result.Status)
		assert.Equal(t, "2026-10-15", result.VisitDate)
		assert.Equal(t, "19:00", result.VisitTime)
		assert.Equal(t, "alice@example.com", result.Customer.Email)
		assert.False(t, f.slotAt("19:00").Available())
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.CreateBooking(context.Background(), "NoSuchPlace",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))

		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("unprovisioned slot is an invalid request", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "15:00", 4, "alice@example.com"))

		var invalid *domain.InvalidRequestError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "no availability slot found")
	})

	t.Run("party size exceeds capacity", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 9, "alice@example.com"))

		var invalid *domain.InvalidRequestError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "party size exceeds slot capacity")
	})

	t.Run("occupied slot rejects a second booking", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		_, err = f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 2, "bob@example.com"))

		var invalid *domain.InvalidRequestError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("reuses customer by email", func(t *testing.T) {
		f := newServiceFixture(t)

		first, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		second, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "12:00", 2, "alice@example.com"))
		require.NoError(t, err)

		assert.Equal(t, first.Customer.ID, second.Customer.ID)
		assert.Len(t, f.store.customers, 1)
	})

	t.Run("concurrent bookings on one slot admit exactly one", func(t *testing.T) {
		f := newServiceFixture(t)
		const workers = 10

		var wg sync.WaitGroup
		successes := make(chan string, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				email := "guest" + strconv.Itoa(i) + "@example.com"
				result, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
					createRequest(f.visitDate, "12:30", 2, email))
				if err == nil {
					successes <- result.BookingReference
				}
			}(i)
		}
		wg.Wait()
		close(successes)

		var won []string
		for ref := range successes {
			won = append(won, ref)
		}
		assert.Len(t, won, 1)
		assert.False(t, f.slotAt("12:30").Available())
	})
}

func TestGetBooking(t *testing.T) {
	f := newServiceFixture(t)

	created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
		createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
	require.NoError(t, err)

	t.Run("returns full detail", func(t *testing.T) {
		detail, err := f.service.GetBooking(context.Background(), "TheHungryUnicorn", created.BookingReference)
		require.NoError(t, err)

		assert.Equal(t, created.BookingReference, detail.BookingReference)
		assert.Equal(t, "confirmed", detail.Status)
		assert.Nil(t, detail.CancellationReason)
		assert.Equal(t, "alice@example.com", detail.Customer.Email)
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := f.service.GetBooking(context.Background(), "TheHungryUnicorn", "ZZZZZZZ")
		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("includes cancellation reason after cancel", func(t *testing.T) {
		_, err := f.service.CancelBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 2})
		require.NoError(t, err)

		detail, err := f.service.GetBooking(context.Background(), "TheHungryUnicorn", created.BookingReference)
		require.NoError(t, err)

		assert.Equal(t, "cancelled", detail.Status)
		require.NotNil(t, detail.CancellationReason)
		assert.Equal(t, "Restaurant Closure", detail.CancellationReason.Reason)
	})

	t.Run("reason lookup failure propagates", func(t *testing.T) {
		f.store.reasonLookupErr = errors.New("reason store unavailable")
		defer func() { f.store.reasonLookupErr = nil }()

		_, err := f.service.GetBooking(context.Background(), "TheHungryUnicorn", created.BookingReference)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reason store unavailable")
	})

	t.Run("missing reason row renders null reason", func(t *testing.T) {
		delete(f.store.reasons, 2)

		detail, err := f.service.GetBooking(context.Background(), "TheHungryUnicorn", created.BookingReference)
		require.NoError(t, err)

		assert.Equal(t, "cancelled", detail.Status)
		assert.Nil(t, detail.CancellationReason)
	})
}

func TestUpdateBooking(t *testing.T) {
	t.Run("no changes is reported as such", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		party := 4
		result, err := f.service.UpdateBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			booking.UpdateParams{PartySize: &party})
		require.NoError(t, err)

		assert.Equal(t, "no_changes", result.Status)
		assert.Empty(t, result.Updates)
	})

	t.Run("in-place edit leaves slots untouched", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		requests := "birthday cake"
		result, err := f.service.UpdateBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			booking.UpdateParams{SpecialRequests: &requests})
		require.NoError(t, err)

		assert.Equal(t, "updated", result.Status)
		assert.Equal(t, map[string]any{"special_requests": "birthday cake"}, result.Updates)
		assert.False(t, f.slotAt("19:00").Available())
	})

	t.Run("move releases old slot and occupies target", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		newTime := "19:30"
		result, err := f.service.UpdateBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			booking.UpdateParams{VisitTime: &newTime})
		require.NoError(t, err)

		assert.Equal(t, "updated", result.Status)
		assert.Equal(t, "19:30", result.Updates["visit_time"])
		assert.True(t, f.slotAt("19:00").Available())
		assert.False(t, f.slotAt("19:30").Available())
	})

	t.Run("move to unprovisioned slot is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		newTime := "15:00"
		_, err = f.service.UpdateBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			booking.UpdateParams{VisitTime: &newTime})

		var notFound *domain.NotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.False(t, f.slotAt("19:00").Available())
	})

	t.Run("move to occupied slot is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)
		_, err = f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:30", 2, "bob@example.com"))
		require.NoError(t, err)

		newTime := "19:30"
		_, err = f.service.UpdateBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			booking.UpdateParams{VisitTime: &newTime})

		var invalid *domain.InvalidRequestError
		require.ErrorAs(t, err, &invalid)
		assert.False(t, f.slotAt("19:00").Available())
	})

	t.Run("cancelled booking cannot be updated", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)
		_, err = f.service.CancelBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 1})
		require.NoError(t, err)

		party := 2
		_, err = f.service.UpdateBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			booking.UpdateParams{PartySize: &party})

		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})
}

func TestCancelBooking(t *testing.T) {
	t.Run("cancels and frees the slot", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		result, err := f.service.CancelBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 1})
		require.NoError(t, err)

		assert.Equal(t, "cancelled", result.Status)
		assert.Equal(t, "Customer Request", result.CancellationReason)
		assert.Contains(t, result.Message, "successfully cancelled")
		assert.True(t, f.slotAt("19:00").Available())
	})

	t.Run("cancelling twice conflicts", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)
		_, err = f.service.CancelBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 1})
		require.NoError(t, err)

		_, err = f.service.CancelBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 1})

		var conflict *domain.ConflictError
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("unknown reason is an invalid request", func(t *testing.T) {
		f := newServiceFixture(t)
		created, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
			createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
		require.NoError(t, err)

		_, err = f.service.CancelBooking(context.Background(), "TheHungryUnicorn", created.BookingReference,
			CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 99})

		var invalid *domain.InvalidRequestError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "invalid cancellation reason")
		assert.False(t, f.slotAt("19:00").Available())
	})
}

func TestListBookings(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
		createRequest(f.visitDate, "19:00", 4, "alice@example.com"))
	require.NoError(t, err)
	_, err = f.service.CreateBooking(context.Background(), "TheHungryUnicorn",
		createRequest(f.visitDate, "12:00", 2, "bob@example.com"))
	require.NoError(t, err)
	_, err = f.service.CancelBooking(context.Background(), "TheHungryUnicorn", first.BookingReference,
		CancelBookingRequest{MicrositeName: "TheHungryUnicorn", CancellationReasonID: 1})
	require.NoError(t, err)

	t.Run("lists all bookings", func(t *testing.T) {
		result, err := f.service.ListBookings(context.Background(), "TheHungryUnicorn", ListBookingsRequest{Limit: 100})
		require.NoError(t, err)
		assert.Len(t, result, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		result, err := f.service.ListBookings(context.Background(), "TheHungryUnicorn",
			ListBookingsRequest{Status: "cancelled", Limit: 100})
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, first.BookingReference, result[0].BookingReference)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := f.service.ListBookings(context.Background(), "TheHungryUnicorn",
			ListBookingsRequest{Status: "pending", Limit: 100})
		var invalid *domain.InvalidRequestError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestListCancellationReasons(t *testing.T) {
	f := newServiceFixture(t)

	reasons, err := f.service.ListCancellationReasons(context.Background(), "TheHungryUnicorn")
	require.NoError(t, err)

	require.Len(t, reasons, 2)
	assert.Equal(t, "Customer Request", reasons[0].Reason)
}
