package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"rideshare/internal/http/middleware"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

type createTripRequest struct {
	UserID            int64     `json:"user_id"`
	VehicleID         int64     `json:"vehicle_id"`
	DepartureLocation string    `json:"departure_location"`
	ArrivalLocation   string    `json:"arrival_location"`
	DepLat            Stringish `json:"dep_lat"`
	DepLng            Stringish `json:"dep_lng"`
	ArrLat            Stringish `json:"arr_lat"`
	ArrLng            Stringish `json:"arr_lng"`
	DepartureTime     string    `json:"departure_time"`
	ArrivalTime       string    `json:"arrival_time"`
	Availability      int       `json:"availability"`
	Price             float64   `json:"price"`
}

type updateTripRequest struct {
	UserID            int64      `json:"user_id"`
	VehicleID         *int64     `json:"vehicle_id"`
	DepartureLocation *string    `json:"departure_location"`
	ArrivalLocation   *string    `json:"arrival_location"`
	DepLat            *Stringish `json:"dep_lat"`
	DepLng            *Stringish `json:"dep_lng"`
	ArrLat            *Stringish `json:"arr_lat"`
	ArrLng            *Stringish `json:"arr_lng"`
	DepartureTime     *string    `json:"departure_time"`
	ArrivalTime       *string    `json:"arrival_time"`
	Price             *float64   `json:"price"`
}

// tripActorRequest is the optional body of cancel/init.
type tripActorRequest struct {
	UserID int64 `json:"user_id"`
}

func tripService(c *gin.Context) services.TripService {
	rid := middleware.GetRequestID(c)
	return services.TripService{RequestID: rid, Bookings: services.BookingService{RequestID: rid}}
}

func queryPtr(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok {
		return &v
	}
	return nil
}

// SearchTrips handles GET /api/trips/search.
func SearchTrips(c *gin.Context) {
	q := services.SearchTripsQuery{
		UserID:         queryPtr(c, "user_id"),
		DestinationLat: queryPtr(c, "destination_lat"),
		DestinationLng: queryPtr(c, "destination_lng"),
		ArrivalLat:     queryPtr(c, "arrival_lat"),
		ArrivalLng:     queryPtr(c, "arrival_lng"),
		Radius:         queryPtr(c, "radius"),
	}
	svc := services.TripSearchService{RequestID: middleware.GetRequestID(c)}
	out, err := svc.Search(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetTrip handles GET /api/trips/:tripId.
func GetTrip(c *gin.Context) {
	id, ok := pathID(c, "tripId")
	if !ok {
		return
	}
	out, err := tripService(c).GetTrip(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetMyTrips handles GET /api/users/me/trips?userId=&status=.
func GetMyTrips(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("userId"))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("user_id"))
	}
	var userID int64
	if raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			respondError(c, http.StatusBadRequest, "invalid_user_id", "userId must be a positive integer", nil)
			return
		}
		userID = v
	} else if uid, ok := middleware.CurrentUserID(c); ok {
		userID = uid
	}

	var status *int
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_status", "status must be 0 or 1", nil)
			return
		}
		status = &v
	}

	out, err := tripService(c).ListUserTrips(c.Request.Context(), userID, status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// CreateTrip handles POST /api/trips.
func CreateTrip(c *gin.Context) {
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := tripService(c).CreateTrip(c.Request.Context(), services.CreateTripInput{
		UserID:            req.UserID,
		VehicleID:         req.VehicleID,
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		DepLat:            req.DepLat.String(),
		DepLng:            req.DepLng.String(),
		ArrLat:            req.ArrLat.String(),
		ArrLng:            req.ArrLng.String(),
		DepartureTime:     req.DepartureTime,
		ArrivalTime:       req.ArrivalTime,
		Availability:      req.Availability,
		Price:             req.Price,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// UpdateTrip handles PUT /api/trips/:tripId.
func UpdateTrip(c *gin.Context) {
	id, ok := pathID(c, "tripId")
	if !ok {
		return
	}
	var req updateTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	out, err := tripService(c).UpdateTrip(c.Request.Context(), id, req.UserID, services.UpdateTripInput{
		VehicleID:         req.VehicleID,
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		DepLat:            req.DepLat.ptr(),
		DepLng:            req.DepLng.ptr(),
		ArrLat:            req.ArrLat.ptr(),
		ArrLng:            req.ArrLng.ptr(),
		DepartureTime:     req.DepartureTime,
		ArrivalTime:       req.ArrivalTime,
		Price:             req.Price,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func tripActor(c *gin.Context) int64 {
	var req tripActorRequest
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if req.UserID > 0 {
		return req.UserID
	}
	uid, _ := middleware.CurrentUserID(c)
	return uid
}

// CancelTrip handles POST /api/trips/:tripId/cancel.
func CancelTrip(c *gin.Context) {
	id, ok := pathID(c, "tripId")
	if !ok {
		return
	}
	if err := tripService(c).CancelTrip(c.Request.Context(), id, tripActor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// InitTrip handles POST /api/trips/:tripId/init.
func InitTrip(c *gin.Context) {
	id, ok := pathID(c, "tripId")
	if !ok {
		return
	}
	if err := tripService(c).InitTrip(c.Request.Context(), id, tripActor(c)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
