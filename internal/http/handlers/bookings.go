package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	UserID       int64           `json:"user_id"`
	Seat         int             `json:"seat"`
	Price        *float64        `json:"price"`
	PickupPoint  json.RawMessage `json:"pickup_point"`
	PickupLatLng *string         `json:"pickup_lat_lng"`
}

type cancelBookingRequest struct {
	UserID int64 `json:"user_id"`
}

type rateBookingRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{RequestID: middleware.GetRequestID(c)}
}

// actingUser prefers an explicit user_id from the body and falls back to the token subject.
func actingUser(c *gin.Context, bodyUserID int64) int64 {
	if bodyUserID > 0 {
		return bodyUserID
	}
	uid, _ := middleware.CurrentUserID(c)
	return uid
}

// CreateBooking handles POST /api/bookings/trips/:tripId/bookings.
func CreateBooking(c *gin.Context) {
	tripID, ok := pathID(c, "tripId")
	if !ok {
		return
	}
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if string(req.PickupPoint) == "null" {
		req.PickupPoint = nil
	}

	out, err := bookingService(c).CreateBooking(c.Request.Context(), tripID, services.CreateBookingInput{
		UserID:       actingUser(c, req.UserID),
		Seat:         req.Seat,
		Price:        req.Price,
		PickupPoint:  req.PickupPoint,
		PickupLatLng: req.PickupLatLng,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetBooking handles GET /api/bookings/:bookingId.
func GetBooking(c *gin.Context) {
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}
	out, err := bookingService(c).GetBooking(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CancelBooking handles POST /api/bookings/:bookingId/cancel.
func CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_json", "invalid payload", err.Error())
			return
		}
	}
	userID := actingUser(c, req.UserID)
	if userID <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "user_id: required", nil)
		return
	}

	out, err := bookingService(c).CancelBooking(c.Request.Context(), id, userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// RateBooking handles POST /api/bookings/:bookingId/rate.
func RateBooking(c *gin.Context) {
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}
	var req rateBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := bookingService(c).RateBooking(c.Request.Context(), id, req.Rating, req.Comment)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// GetBookingReceipt handles GET /api/bookings/:bookingId/receipt?format=json|pdf.
func GetBookingReceipt(c *gin.Context) {
	id, ok := pathID(c, "bookingId")
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "json")))

	switch format {
	case "json":
		out, err := bookingService(c).GetReceipt(c.Request.Context(), id)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	case "pdf":
		svc := services.DocsService{Bookings: bookingService(c), RequestID: middleware.GetRequestID(c)}
		pdfBytes, filename, err := svc.GenerateReceipt(c.Request.Context(), id)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	default:
		respondError(c, http.StatusBadRequest, "invalid_format", "format must be json or pdf", nil)
	}
}
