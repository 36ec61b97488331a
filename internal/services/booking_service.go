package services

import (
	"context"
	"database/sql"
	"encoding/json"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
	"rideshare/internal/repositories"
	"rideshare/internal/utils"
)

// BookingService owns every write to trips.availability.
type BookingService struct {
	DB          *sql.DB
	TripRepo    repositories.TripRepository
	BookingRepo repositories.BookingRepository
	RatingRepo  repositories.RatingRepository
	RequestID   string
}

type CreateBookingInput struct {
	UserID       int64
	Seat         int
	Price        *float64
	PickupPoint  json.RawMessage
	PickupLatLng *string
}

type CancelResult struct {
	Success bool `json:"success"`
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) trips() repositories.TripRepository {
	if s.TripRepo.DB != nil {
		return s.TripRepo
	}
	return repositories.TripRepository{DB: s.db()}
}

func (s BookingService) bookings() repositories.BookingRepository {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepository{DB: s.db()}
}

func (s BookingService) ratings() repositories.RatingRepository {
	if s.RatingRepo.DB != nil {
		return s.RatingRepo
	}
	return repositories.RatingRepository{DB: s.db()}
}

func (in CreateBookingInput) validate() error {
	if in.UserID <= 0 {
		return domain.ValidationError{Field: "user_id", Msg: "required"}
	}
	if in.Seat <= 0 {
		return domain.ValidationError{Field: "seat", Msg: "must be greater than 0"}
	}
	if in.Price != nil && *in.Price < 0 {
		return domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	if len(in.PickupPoint) > 0 && !json.Valid(in.PickupPoint) {
		return domain.ValidationError{Field: "pickup_point", Msg: "must be valid JSON"}
	}
	return nil
}

// CreateBooking reserves one seat on tripID. The trip row stays locked from the
// availability check until commit, so concurrent callers can never oversell.
func (s BookingService) CreateBooking(ctx context.Context, tripID int64, in CreateBookingInput) (models.Booking, error) {
	if tripID <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	if err := in.validate(); err != nil {
		return models.Booking{}, err
	}

	var out models.Booking
	err := intdb.WithTx(ctx, s.db(), func(q intdb.Querier) error {
		trips := s.trips().WithTx(q)
		bookings := s.bookings().WithTx(q)

		trip, err := trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Availability <= 0 {
			return domain.ConflictError{Resource: "trip", Msg: "no seats available", Err: domain.ErrNoSeatsAvailable}
		}

		price := trip.Price
		if in.Price != nil {
			price = *in.Price
		}
		id, err := bookings.Insert(ctx, models.Booking{
			TripID:       tripID,
			UserID:       in.UserID,
			Seat:         in.Seat,
			Price:        utils.RoundCents(price),
			Status:       domain.BookingPending,
			CreatedBy:    in.UserID,
			PickupPoint:  in.PickupPoint,
			PickupLatLng: utils.TrimPtr(in.PickupLatLng),
		})
		if err != nil {
			return err
		}

		ok, err := trips.DecrementAvailability(ctx, tripID, in.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ConflictError{Resource: "trip", Msg: "no seats available", Err: domain.ErrNoSeatsAvailable}
		}

		out, err = bookings.GetByID(ctx, id)
		return err
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "bookings", "create", "failed", "trip_id", tripID, "user_id", in.UserID, "err", err)
		return models.Booking{}, wrapStoreError(err, "booking failed")
	}

	utils.LogEvent(s.RequestID, "bookings", "create", "ok", "booking_id", out.ID, "trip_id", tripID)
	return out, nil
}

// CancelBooking cancels an active booking and hands its seat back to the trip. A trip
// that no longer exists is tolerated: the booking is still cancelled.
func (s BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (CancelResult, error) {
	if bookingID <= 0 {
		return CancelResult{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}

	err := intdb.WithTx(ctx, s.db(), func(q intdb.Querier) error {
		trips := s.trips().WithTx(q)
		bookings := s.bookings().WithTx(q)

		b, err := bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}

		// Lock order is trip then booking everywhere.
		tripFound := true
		if _, err := trips.GetForUpdate(ctx, b.TripID); err != nil {
			if !domain.IsNotFound(err) {
				return err
			}
			tripFound = false
		}

		b, err = bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == domain.BookingCancelled {
			return domain.ConflictError{Resource: "booking", Msg: "already cancelled", Err: domain.ErrAlreadyCancelled}
		}
		ok, err := bookings.MarkCancelled(ctx, bookingID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ConflictError{Resource: "booking", Msg: "already cancelled", Err: domain.ErrAlreadyCancelled}
		}

		if !tripFound {
			utils.LogEvent(s.RequestID, "bookings", "cancel", "trip missing, availability untouched", "booking_id", bookingID, "trip_id", b.TripID)
			return nil
		}
		restored, err := trips.IncrementAvailability(ctx, b.TripID, 1, userID)
		if err != nil {
			return err
		}
		if !restored {
			utils.LogEvent(s.RequestID, "bookings", "cancel", "trip already at capacity", "booking_id", bookingID, "trip_id", b.TripID)
		}
		return nil
	})
	if err != nil {
		utils.LogEvent(s.RequestID, "bookings", "cancel", "failed", "booking_id", bookingID, "err", err)
		return CancelResult{}, wrapStoreError(err, "cancel booking failed")
	}

	utils.LogEvent(s.RequestID, "bookings", "cancel", "ok", "booking_id", bookingID, "user_id", userID)
	return CancelResult{Success: true}, nil
}

// CancelAllForTripTx cancels every active booking of tripID inside the caller's
// transaction and returns their seats. The caller must already hold the trip row lock.
func (s BookingService) CancelAllForTripTx(ctx context.Context, q intdb.Querier, tripID, actor int64) (int64, error) {
	n, err := s.bookings().WithTx(q).CancelActiveByTrip(ctx, tripID, actor)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if _, err := s.trips().WithTx(q).IncrementAvailability(ctx, tripID, int(n), actor); err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "bookings", "cancel_all", "ok", "trip_id", tripID, "count", n)
	return n, nil
}

func (s BookingService) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	b, err := s.bookings().GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, wrapStoreError(err, "get booking failed")
	}
	return b, nil
}

// RateBooking attaches a 1..5 rating to an existing booking, whatever its status.
func (s BookingService) RateBooking(ctx context.Context, bookingID int64, rating int, comment *string) (models.BookingRating, error) {
	if rating < 1 || rating > 5 {
		return models.BookingRating{}, domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}
	if _, err := s.bookings().GetByID(ctx, bookingID); err != nil {
		return models.BookingRating{}, wrapStoreError(err, "rate booking failed")
	}

	out, err := s.ratings().Create(ctx, models.BookingRating{
		BookingID: bookingID,
		Rating:    rating,
		Comment:   utils.EmptyToNil(utils.TrimPtr(comment)),
	})
	if err != nil {
		return models.BookingRating{}, domain.InternalError{Msg: "rate booking failed", Err: err}
	}
	utils.LogEvent(s.RequestID, "bookings", "rate", "ok", "booking_id", bookingID, "rating", rating)
	return out, nil
}

// GetReceipt assembles a receipt from the current booking and trip rows. Trip is nil
// when the trip has since been deleted.
func (s BookingService) GetReceipt(ctx context.Context, bookingID int64) (models.Receipt, error) {
	b, err := s.bookings().GetByID(ctx, bookingID)
	if err != nil {
		return models.Receipt{}, wrapStoreError(err, "receipt failed")
	}
	out := models.Receipt{Booking: models.ReceiptBooking{
		ID:        b.ID,
		Seat:      b.Seat,
		Price:     b.Price,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
	}}

	t, err := s.trips().GetByID(ctx, b.TripID)
	switch {
	case err == nil:
		out.Trip = &models.ReceiptTrip{
			ID:                t.ID,
			DepartureLocation: t.DepartureLocation,
			ArrivalLocation:   t.ArrivalLocation,
			DepartureTime:     t.DepartureTime,
			ArrivalTime:       t.ArrivalTime,
			VehicleID:         t.VehicleID,
		}
	case domain.IsNotFound(err):
	default:
		return models.Receipt{}, domain.InternalError{Msg: "receipt failed", Err: err}
	}
	return out, nil
}

// wrapStoreError passes domain errors through and hides everything else behind an
// InternalError carrying msg.
func wrapStoreError(err error, msg string) error {
	if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) ||
		domain.IsUnauthorized(err) || domain.IsInternal(err) {
		return err
	}
	return domain.InternalError{Msg: msg, Err: err}
}
