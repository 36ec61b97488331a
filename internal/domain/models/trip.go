package models

import (
	"time"

	"rideshare/internal/domain"
)

// Trip mirrors the trips table. Coordinates are kept as the decimal strings the
// clients send; they are parsed only where distances are computed.
type Trip struct {
	ID                int64             `json:"id"`
	UserID            int64             `json:"user_id"`
	VehicleID         int64             `json:"vehicle_id"`
	DepartureLocation string            `json:"departure_location"`
	ArrivalLocation   string            `json:"arrival_location"`
	DepLat            string            `json:"dep_lat"`
	DepLng            string            `json:"dep_lng"`
	ArrLat            string            `json:"arr_lat"`
	ArrLng            string            `json:"arr_lng"`
	DepartureTime     time.Time         `json:"departure_time"`
	ArrivalTime       time.Time         `json:"arrival_time"`
	Capacity          int               `json:"capacity"`
	Availability      int               `json:"availability"`
	Price             float64           `json:"price"`
	Status            domain.TripStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	CreatedBy         int64             `json:"created_by"`
	ModifiedAt        *time.Time        `json:"modified_at"`
	ModifiedBy        int64             `json:"modified_by"`
}

// TripMatch is a search hit with the distances that qualified it.
type TripMatch struct {
	Trip
	DestinationDistanceKm *float64 `json:"destination_distance,omitempty"`
	ArrivalDistanceKm     *float64 `json:"arrival_distance,omitempty"`
}

// TripDetail is a trip joined with its vehicle and owner.
type TripDetail struct {
	Trip
	Vehicle *VehicleSummary `json:"vehicle"`
	User    *UserSummary    `json:"user"`
}

// TripUpdate supports PATCH-style updates via pointer presence. Availability and
// status are deliberately absent: they have dedicated write paths.
type TripUpdate struct {
	VehicleID         *int64
	DepartureLocation *string
	ArrivalLocation   *string
	DepLat            *string
	DepLng            *string
	ArrLat            *string
	ArrLng            *string
	DepartureTime     *time.Time
	ArrivalTime       *time.Time
	Price             *float64
	ModifiedBy        int64
}

// TripFilter narrows store-side trip scans.
type TripFilter struct {
	UserID *int64
	Status *domain.TripStatus
	Boxes  []CoordBox
}

// CoordBox bounds one stored point (departure or arrival) of a trip.
type CoordBox struct {
	Point  TripPoint
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
	// AnyLng disables the longitude bounds (box spans a pole or the antimeridian).
	AnyLng bool
}

type TripPoint int

const (
	DeparturePoint TripPoint = iota
	ArrivalPoint
)
