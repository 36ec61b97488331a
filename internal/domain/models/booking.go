package models

import (
	"encoding/json"
	"time"

	"rideshare/internal/domain"
)

// Booking mirrors the bookings table.
type Booking struct {
	ID           int64                `json:"id"`
	TripID       int64                `json:"trip_id"`
	UserID       int64                `json:"user_id"`
	Seat         int                  `json:"seat"`
	Price        float64              `json:"price"`
	Status       domain.BookingStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	CreatedBy    int64                `json:"created_by"`
	ModifiedAt   *time.Time           `json:"modified_at"`
	ModifiedBy   int64                `json:"modified_by"`
	PickupPoint  json.RawMessage      `json:"pickup_point,omitempty"`
	PickupLatLng *string              `json:"pickup_lat_lng"`
}

// BookingRating mirrors the ratings table.
type BookingRating struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Receipt is assembled on demand from the live booking and trip rows.
type Receipt struct {
	Booking ReceiptBooking `json:"booking"`
	Trip    *ReceiptTrip   `json:"trip"`
}

type ReceiptBooking struct {
	ID        int64                `json:"id"`
	Seat      int                  `json:"seat"`
	Price     float64              `json:"price"`
	Status    domain.BookingStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

type ReceiptTrip struct {
	ID                int64     `json:"id"`
	DepartureLocation string    `json:"departure_location"`
	ArrivalLocation   string    `json:"arrival_location"`
	DepartureTime     time.Time `json:"departure_time"`
	ArrivalTime       time.Time `json:"arrival_time"`
	VehicleID         int64     `json:"vehicle_id"`
}
