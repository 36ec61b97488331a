package models

import "time"

type Vehicle struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Model       *string    `json:"model"`
	PlateNumber string     `json:"plate_number"`
	Color       *string    `json:"color"`
	Capacity    int        `json:"capacity"`
	Images      []string   `json:"images"`
	CreatedAt   time.Time  `json:"created_at"`
	CreatedBy   int64      `json:"created_by"`
	ModifiedAt  *time.Time `json:"modified_at"`
	ModifiedBy  int64      `json:"modified_by"`
}

type VehicleUpdate struct {
	UserID      *int64
	Model       *string
	PlateNumber *string
	Color       *string
	Capacity    *int
	ModifiedBy  *int64
}

type VehicleSummary struct {
	ID          int64   `json:"id"`
	Model       *string `json:"model"`
	PlateNumber string  `json:"plate_number"`
	Color       *string `json:"color"`
	Capacity    int     `json:"capacity"`
}
