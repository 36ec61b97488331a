package repositories

import (
	"context"
	"database/sql"
	"errors"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
)

const bookingColumns = `id, trip_id, user_id, seat, price, status,
	created_at, created_by, modified_at, modified_by,
	pickup_point, pickup_lat_lng`

type BookingRepository struct {
	DB *sql.DB
	Q  intdb.Querier
}

func (r BookingRepository) conn() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepository) WithTx(q intdb.Querier) BookingRepository {
	r.Q = q
	return r
}

func scanBooking(s rowScanner) (models.Booking, error) {
	var (
		b          models.Booking
		modifiedAt sql.NullTime
		pickup     []byte
		latLng     sql.NullString
	)
	if err := s.Scan(
		&b.ID, &b.TripID, &b.UserID, &b.Seat, &b.Price, &b.Status,
		&b.CreatedAt, &b.CreatedBy, &modifiedAt, &b.ModifiedBy,
		&pickup, &latLng,
	); err != nil {
		return models.Booking{}, err
	}
	if modifiedAt.Valid {
		v := modifiedAt.Time
		b.ModifiedAt = &v
	}
	if len(pickup) > 0 {
		b.PickupPoint = append([]byte(nil), pickup...)
	}
	b.PickupLatLng = nullStringPtr(latLng)
	return b, nil
}

func (r BookingRepository) Insert(ctx context.Context, b models.Booking) (int64, error) {
	var pickup any
	if len(b.PickupPoint) > 0 {
		pickup = string(b.PickupPoint)
	}
	res, err := r.conn().ExecContext(ctx, `
		INSERT INTO bookings (
			trip_id, user_id, seat, price, status,
			created_at, created_by, pickup_point, pickup_lat_lng
		) VALUES (?, ?, ?, ?, ?, NOW(), ?, ?, ?)
	`,
		b.TripID, b.UserID, b.Seat, b.Price, int(b.Status),
		b.CreatedBy, pickup, intdb.NullIfNil(b.PickupLatLng),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepository) getOne(ctx context.Context, id int64, suffix string) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	row := r.conn().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`+suffix, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.Booking{}, err
	}
	return b, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate locks the booking row for the surrounding transaction.
func (r BookingRepository) GetForUpdate(ctx context.Context, id int64) (models.Booking, error) {
	return r.getOne(ctx, id, " FOR UPDATE")
}

// MarkCancelled flips an active booking to cancelled. False when it already was.
func (r BookingRepository) MarkCancelled(ctx context.Context, id, actor int64) (bool, error) {
	res, err := r.conn().ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, modified_at = NOW(), modified_by = ?
		WHERE id = ? AND status <> ?
	`, int(domain.BookingCancelled), actor, id, int(domain.BookingCancelled))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CancelActiveByTrip cancels every non-cancelled booking of a trip and reports how
// many rows changed.
func (r BookingRepository) CancelActiveByTrip(ctx context.Context, tripID, actor int64) (int64, error) {
	res, err := r.conn().ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, modified_at = NOW(), modified_by = ?
		WHERE trip_id = ? AND status <> ?
	`, int(domain.BookingCancelled), actor, tripID, int(domain.BookingCancelled))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
