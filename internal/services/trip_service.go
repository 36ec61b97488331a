package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"
)

// TripService manages the trip lifecycle. Seat counts are left to BookingService.
type TripService struct {
	DB          *sql.DB
	TripRepo    repositories.TripRepository
	VehicleRepo repositories.VehicleRepository
	Bookings    BookingService
	RequestID   string
}

type CreateTripInput struct {
	UserID            int64
	VehicleID         int64
	DepartureLocation string
	ArrivalLocation   string
	DepLat            string
	DepLng            string
	ArrLat            string
	ArrLng            string
	DepartureTime     string
	ArrivalTime       string
	Availability      int
	Price             float64
}

// UpdateTripInput carries the editable trip fields; nil means untouched.
type UpdateTripInput struct {
	VehicleID         *int64
	DepartureLocation *string
	ArrivalLocation   *string
	DepLat            *string
	DepLng            *string
	ArrLat            *string
	ArrLng            *string
	DepartureTime     *string
	ArrivalTime       *string
	Price             *float64
}

func (s TripService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s TripService) trips() repositories.TripRepository {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepository{DB: s.db()}
}

func (s TripService) vehicles() repositories.VehicleRepository {
	if s.VehicleRepo.DB != nil {
		return s.VehicleRepo
	}
	return repositories.VehicleRepository{DB: s.db()}
}

func (s TripService) bookings() BookingService {
	b := s.Bookings
	if b.DB == nil {
		b.DB = s.db()
	}
	if b.RequestID == "" {
		b.RequestID = s.RequestID
	}
	return b
}

func validateCoordinate(field, raw string, limit float64) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ValidationError{Field: field, Msg: "required"}
	}
	v, err := utils.ParseNumber(raw)
	if err != nil {
		return "", domain.ValidationError{Field: field, Msg: "must be a valid number", Err: err}
	}
	if v < -limit || v > limit {
		return "", domain.ValidationError{Field: field, Msg: "out of range"}
	}
	return raw, nil
}

func parseTripTime(field, raw string) (time.Time, error) {
	t, err := utils.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: field, Msg: "must be an ISO 8601 timestamp", Err: err}
	}
	return t, nil
}

func (s TripService) CreateTrip(ctx context.Context, in CreateTripInput) (models.Trip, error) {
	if in.UserID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "user_id", Msg: "required"}
	}
	if in.VehicleID <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "vehicle_id", Msg: "required"}
	}
	dep := utils.NormalizeSpace(in.DepartureLocation)
	arr := utils.NormalizeSpace(in.ArrivalLocation)
	if dep == "" {
		return models.Trip{}, domain.ValidationError{Field: "departure_location", Msg: "required"}
	}
	if arr == "" {
		return models.Trip{}, domain.ValidationError{Field: "arrival_location", Msg: "required"}
	}

	trip := models.Trip{
		UserID:            in.UserID,
		VehicleID:         in.VehicleID,
		DepartureLocation: dep,
		ArrivalLocation:   arr,
		Capacity:          in.Availability,
		Availability:      in.Availability,
		Price:             utils.RoundCents(in.Price),
		Status:            domain.TripActive,
		CreatedBy:         in.UserID,
	}
	var err error
	if trip.DepLat, err = validateCoordinate("dep_lat", in.DepLat, 90); err != nil {
		return models.Trip{}, err
	}
	if trip.DepLng, err = validateCoordinate("dep_lng", in.DepLng, 180); err != nil {
		return models.Trip{}, err
	}
	if trip.ArrLat, err = validateCoordinate("arr_lat", in.ArrLat, 90); err != nil {
		return models.Trip{}, err
	}
	if trip.ArrLng, err = validateCoordinate("arr_lng", in.ArrLng, 180); err != nil {
		return models.Trip{}, err
	}
	if trip.DepartureTime, err = parseTripTime("departure_time", in.DepartureTime); err != nil {
		return models.Trip{}, err
	}
	if trip.ArrivalTime, err = parseTripTime("arrival_time", in.ArrivalTime); err != nil {
		return models.Trip{}, err
	}
	if !trip.ArrivalTime.After(trip.DepartureTime) {
		return models.Trip{}, domain.ValidationError{Field: "arrival_time", Msg: "must be after departure_time"}
	}
	if in.Availability < 0 {
		return models.Trip{}, domain.ValidationError{Field: "availability", Msg: "must not be negative"}
	}
	if in.Price < 0 {
		return models.Trip{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}

	if _, err := s.vehicles().GetByID(ctx, in.VehicleID); err != nil {
		return models.Trip{}, wrapStoreError(err, "create trip failed")
	}

	id, err := s.trips().Create(ctx, trip)
	if err != nil {
		return models.Trip{}, domain.InternalError{Msg: "create trip failed", Err: err}
	}
	out, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return models.Trip{}, wrapStoreError(err, "create trip failed")
	}
	utils.LogEvent(s.RequestID, "trips", "create", "ok", "trip_id", id, "user_id", in.UserID)
	return out, nil
}

func (s TripService) GetTrip(ctx context.Context, id int64) (models.TripDetail, error) {
	t, err := s.trips().GetDetail(ctx, id)
	if err != nil {
		return models.TripDetail{}, wrapStoreError(err, "get trip failed")
	}
	return t, nil
}

// ListUserTrips returns the trips offered by userID, optionally narrowed to one status.
func (s TripService) ListUserTrips(ctx context.Context, userID int64, status *int) ([]models.Trip, error) {
	if userID <= 0 {
		return nil, domain.ValidationError{Field: "userId", Msg: "required"}
	}
	f := models.TripFilter{UserID: &userID}
	if status != nil {
		st := domain.TripStatus(*status)
		if st != domain.TripActive && st != domain.TripInactive {
			return nil, domain.ValidationError{Field: "status", Msg: "must be 0 or 1"}
		}
		f.Status = &st
	}
	out, err := s.trips().List(ctx, f)
	if err != nil {
		return nil, domain.InternalError{Msg: "list trips failed", Err: err}
	}
	return out, nil
}

// CancelTrip deactivates the trip and cancels its active bookings in one transaction.
func (s TripService) CancelTrip(ctx context.Context, id, actor int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "trip_id", Msg: "a valid trip id is required to cancel a trip"}
	}
	var cancelled int64
	err := intdb.WithTx(ctx, s.db(), func(q intdb.Querier) error {
		trips := s.trips().WithTx(q)
		if _, err := trips.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if err := trips.UpdateStatus(ctx, id, domain.TripInactive, actor); err != nil {
			return err
		}
		n, err := s.bookings().CancelAllForTripTx(ctx, q, id, actor)
		cancelled = n
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "trips", "cancel", "failed", "trip_id", id, "err", err)
		return wrapStoreError(err, "cancel trip failed")
	}
	utils.LogEvent(s.RequestID, "trips", "cancel", "ok", "trip_id", id, "bookings_cancelled", cancelled)
	return nil
}

// InitTrip marks a trip active again. Bookings cancelled earlier stay cancelled.
func (s TripService) InitTrip(ctx context.Context, id, actor int64) error {
	if _, err := s.trips().GetByID(ctx, id); err != nil {
		return wrapStoreError(err, "init trip failed")
	}
	if err := s.trips().UpdateStatus(ctx, id, domain.TripActive, actor); err != nil {
		return domain.InternalError{Msg: "init trip failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "trips", "init", "ok", "trip_id", id)
	return nil
}

func (s TripService) UpdateTrip(ctx context.Context, id, actor int64, in UpdateTripInput) (models.Trip, error) {
	current, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return models.Trip{}, wrapStoreError(err, "update trip failed")
	}

	upd := models.TripUpdate{ModifiedBy: actor, VehicleID: in.VehicleID, Price: in.Price}
	if in.VehicleID != nil {
		if _, err := s.vehicles().GetByID(ctx, *in.VehicleID); err != nil {
			return models.Trip{}, wrapStoreError(err, "update trip failed")
		}
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return models.Trip{}, domain.ValidationError{Field: "price", Msg: "must not be negative"}
		}
		p := utils.RoundCents(*in.Price)
		upd.Price = &p
	}
	for _, loc := range []struct {
		field string
		in    *string
		out   **string
	}{
		{"departure_location", in.DepartureLocation, &upd.DepartureLocation},
		{"arrival_location", in.ArrivalLocation, &upd.ArrivalLocation},
	} {
		if loc.in == nil {
			continue
		}
		v := utils.NormalizeSpace(*loc.in)
		if v == "" {
			return models.Trip{}, domain.ValidationError{Field: loc.field, Msg: "must not be empty"}
		}
		*loc.out = &v
	}
	for _, c := range []struct {
		field string
		limit float64
		in    *string
		out   **string
	}{
		{"dep_lat", 90, in.DepLat, &upd.DepLat},
		{"dep_lng", 180, in.DepLng, &upd.DepLng},
		{"arr_lat", 90, in.ArrLat, &upd.ArrLat},
		{"arr_lng", 180, in.ArrLng, &upd.ArrLng},
	} {
		if c.in == nil {
			continue
		}
		v, err := validateCoordinate(c.field, *c.in, c.limit)
		if err != nil {
			return models.Trip{}, err
		}
		*c.out = &v
	}

	depTime, arrTime := current.DepartureTime, current.ArrivalTime
	if in.DepartureTime != nil {
		if depTime, err = parseTripTime("departure_time", *in.DepartureTime); err != nil {
			return models.Trip{}, err
		}
		upd.DepartureTime = &depTime
	}
	if in.ArrivalTime != nil {
		if arrTime, err = parseTripTime("arrival_time", *in.ArrivalTime); err != nil {
			return models.Trip{}, err
		}
		upd.ArrivalTime = &arrTime
	}
	if !arrTime.After(depTime) {
		return models.Trip{}, domain.ValidationError{Field: "arrival_time", Msg: "must be after departure_time"}
	}

	if err := s.trips().Update(ctx, id, upd); err != nil {
		return models.Trip{}, domain.InternalError{Msg: "update trip failed", Err: err}
	}
	out, err := s.trips().GetByID(ctx, id)
	if err != nil {
		return models.Trip{}, wrapStoreError(err, "update trip failed")
	}
	utils.LogEvent(s.RequestID, "trips", "update", "ok", "trip_id", id)
	return out, nil
}
