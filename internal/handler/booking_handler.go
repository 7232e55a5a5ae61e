package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablenest/service-booking/internal/application"
	"github.com/tablenest/service-booking/internal/domain/booking"
	"github.com/tablenest/service-booking/internal/domain/customer"
	"github.com/tablenest/service-booking/internal/response"
)

const dateLayout = "2006-01-02"

// BookingHandler handles HTTP requests for booking operations. The API is
// form-encoded on the way in and JSON on the way out, matching the consumer
// API contract.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
// authMW guards the owner dashboard listing with the static API token.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc) {
	api := r.Group("/api/ConsumerApi/v1/Restaurant")
	{
		api.POST("/:restaurant_name/BookingWithStripeToken", h.CreateBooking)
		api.GET("/:restaurant_name/Booking/:booking_reference", h.GetBooking)
		api.PATCH("/:restaurant_name/Booking/:booking_reference", h.UpdateBooking)
		api.POST("/:restaurant_name/Booking/:booking_reference/Cancel", h.CancelBooking)
		api.GET("/:restaurant_name/Bookings", authMW, h.ListBookings)
		api.GET("/:restaurant_name/CancellationReasons", h.ListCancellationReasons)
	}
}

// createBookingForm is the form-encoded payload of a booking creation.
// Customer fields arrive bracketed, e.g. Customer[Email].
type createBookingForm struct {
	VisitDate            string `form:"VisitDate" binding:"required"`
	VisitTime            string `form:"VisitTime" binding:"required"`
	PartySize            int    `form:"PartySize" binding:"required"`
	ChannelCode          string `form:"ChannelCode" binding:"required"`
	SpecialRequests      string `form:"SpecialRequests"`
	IsLeaveTimeConfirmed bool   `form:"IsLeaveTimeConfirmed"`
	RoomNumber           string `form:"RoomNumber"`
	StripeToken          string `form:"StripeToken"`

	Title                             string `form:"Customer[Title]"`
	FirstName                         string `form:"Customer[FirstName]"`
	Surname                           string `form:"Customer[Surname]"`
	MobileCountryCode                 string `form:"Customer[MobileCountryCode]"`
	Mobile                            string `form:"Customer[Mobile]"`
	PhoneCountryCode                  string `form:"Customer[PhoneCountryCode]"`
	Phone                             string `form:"Customer[Phone]"`
	Email                             string `form:"Customer[Email]"`
	ReceiveEmailMarketing             bool   `form:"Customer[ReceiveEmailMarketing]"`
	ReceiveSmsMarketing               bool   `form:"Customer[ReceiveSmsMarketing]"`
	GroupEmailMarketingOptInText      string `form:"Customer[GroupEmailMarketingOptInText]"`
	GroupSmsMarketingOptInText        string `form:"Customer[GroupSmsMarketingOptInText]"`
	ReceiveRestaurantEmailMarketing   bool   `form:"Customer[ReceiveRestaurantEmailMarketing]"`
	ReceiveRestaurantSmsMarketing     bool   `form:"Customer[ReceiveRestaurantSmsMarketing]"`
	RestaurantEmailMarketingOptInText string `form:"Customer[RestaurantEmailMarketingOptInText]"`
	RestaurantSmsMarketingOptInText   string `form:"Customer[RestaurantSmsMarketingOptInText]"`
}

// CreateBooking handles POST /:restaurant_name/BookingWithStripeToken.
// The Stripe token is accepted opaquely and not processed.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var form createBookingForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	visitDate, err := time.Parse(dateLayout, form.VisitDate)
	if err != nil {
		response.BadRequest(c, "invalid VisitDate, expected YYYY-MM-DD")
		return
	}
	visitTime, err := parseVisitTime(form.VisitTime)
	if err != nil {
		response.BadRequest(c, "invalid VisitTime, expected HH:MM")
		return
	}

	req := application.CreateBookingRequest{
		VisitDate:            visitDate,
		VisitTime:            visitTime,
		PartySize:            form.PartySize,
		ChannelCode:          form.ChannelCode,
		SpecialRequests:      form.SpecialRequests,
		IsLeaveTimeConfirmed: form.IsLeaveTimeConfirmed,
		RoomNumber:           form.RoomNumber,
		Customer: customer.ContactDetails{
			Title:                             form.Title,
			FirstName:                         form.FirstName,
			Surname:                           form.Surname,
			MobileCountryCode:                 form.MobileCountryCode,
			Mobile:                            form.Mobile,
			PhoneCountryCode:                  form.PhoneCountryCode,
			Phone:                             form.Phone,
			Email:                             form.Email,
			ReceiveEmailMarketing:             form.ReceiveEmailMarketing,
			ReceiveSMSMarketing:               form.ReceiveSmsMarketing,
			GroupEmailMarketingOptInText:      form.GroupEmailMarketingOptInText,
			GroupSMSMarketingOptInText:        form.GroupSmsMarketingOptInText,
			ReceiveRestaurantEmailMarketing:   form.ReceiveRestaurantEmailMarketing,
			ReceiveRestaurantSMSMarketing:     form.ReceiveRestaurantSmsMarketing,
			RestaurantEmailMarketingOptInText: form.RestaurantEmailMarketingOptInText,
			RestaurantSMSMarketingOptInText:   form.RestaurantSmsMarketingOptInText,
		},
	}

	result, err := h.service.CreateBooking(c.Request.Context(), c.Param("restaurant_name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBooking handles GET /:restaurant_name/Booking/:booking_reference.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), c.Param("restaurant_name"), c.Param("booking_reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// updateBookingForm is the form-encoded payload of a partial booking update.
// Pointer fields distinguish "absent" from "set to zero value".
type updateBookingForm struct {
	VisitDate            *string `form:"VisitDate"`
	VisitTime            *string `form:"VisitTime"`
	PartySize            *int    `form:"PartySize"`
	SpecialRequests      *string `form:"SpecialRequests"`
	IsLeaveTimeConfirmed *bool   `form:"IsLeaveTimeConfirmed"`
}

// UpdateBooking handles PATCH /:restaurant_name/Booking/:booking_reference.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var form updateBookingForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	params := booking.UpdateParams{
		PartySize:            form.PartySize,
		SpecialRequests:      form.SpecialRequests,
		IsLeaveTimeConfirmed: form.IsLeaveTimeConfirmed,
	}
	if form.VisitDate != nil {
		visitDate, err := time.Parse(dateLayout, *form.VisitDate)
		if err != nil {
			response.BadRequest(c, "invalid VisitDate, expected YYYY-MM-DD")
			return
		}
		params.VisitDate = &visitDate
	}
	if form.VisitTime != nil {
		visitTime, err := parseVisitTime(*form.VisitTime)
		if err != nil {
			response.BadRequest(c, "invalid VisitTime, expected HH:MM")
			return
		}
		params.VisitTime = &visitTime
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), c.Param("restaurant_name"), c.Param("booking_reference"), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// cancelBookingForm is the form-encoded payload of a cancellation.
type cancelBookingForm struct {
	MicrositeName        string `form:"micrositeName" binding:"required"`
	BookingReference     string `form:"bookingReference" binding:"required"`
	CancellationReasonID int64  `form:"cancellationReasonId" binding:"required"`
}

// CancelBooking handles POST /:restaurant_name/Booking/:booking_reference/Cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var form cancelBookingForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reference := c.Param("booking_reference")
	if form.BookingReference != reference {
		response.BadRequest(c, "Booking reference mismatch")
		return
	}

	req := application.CancelBookingRequest{
		MicrositeName:        form.MicrositeName,
		CancellationReasonID: form.CancellationReasonID,
	}
	result, err := h.service.CancelBooking(c.Request.Context(), c.Param("restaurant_name"), reference, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBookings handles GET /:restaurant_name/Bookings (owner dashboard).
func (h *BookingHandler) ListBookings(c *gin.Context) {
	req := application.ListBookingsRequest{
		Status: c.Query("status"),
		Limit:  parseLimitQuery(c, 100),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			response.BadRequest(c, "invalid date_from, expected YYYY-MM-DD")
			return
		}
		req.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			response.BadRequest(c, "invalid date_to, expected YYYY-MM-DD")
			return
		}
		req.DateTo = &to
	}

	result, err := h.service.ListBookings(c.Request.Context(), c.Param("restaurant_name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCancellationReasons handles GET /:restaurant_name/CancellationReasons.
func (h *BookingHandler) ListCancellationReasons(c *gin.Context) {
	result, err := h.service.ListCancellationReasons(c.Request.Context(), c.Param("restaurant_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// parseVisitTime normalizes a visit time to "HH:MM", accepting an optional
// seconds component.
func parseVisitTime(raw string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", fmt.Errorf("invalid time of day: %s", raw)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// parseLimitQuery parses the limit query parameter. A limit must be positive;
// zero, negative and malformed values all fall back to the default page size.
func parseLimitQuery(c *gin.Context, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
