package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
)

const tripColumns = `t.id, t.user_id, t.vehicle_id,
	t.departure_location, t.arrival_location,
	t.dep_lat, t.dep_lng, t.arr_lat, t.arr_lng,
	t.departure_time, t.arrival_time,
	t.capacity, t.availability, t.price, t.status,
	t.created_at, t.created_by, t.modified_at, t.modified_by`

type TripRepository struct {
	DB *sql.DB
	// Q, when set, scopes every statement to an open transaction.
	Q intdb.Querier
}

func (r TripRepository) conn() intdb.Querier {
	if r.Q != nil {
		return r.Q
	}
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// WithTx returns a copy bound to q.
func (r TripRepository) WithTx(q intdb.Querier) TripRepository {
	r.Q = q
	return r
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(s rowScanner, extra ...any) (models.Trip, error) {
	var t models.Trip
	var modifiedAt sql.NullTime
	dest := []any{
		&t.ID, &t.UserID, &t.VehicleID,
		&t.DepartureLocation, &t.ArrivalLocation,
		&t.DepLat, &t.DepLng, &t.ArrLat, &t.ArrLng,
		&t.DepartureTime, &t.ArrivalTime,
		&t.Capacity, &t.Availability, &t.Price, &t.Status,
		&t.CreatedAt, &t.CreatedBy, &modifiedAt, &t.ModifiedBy,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return models.Trip{}, err
	}
	if modifiedAt.Valid {
		v := modifiedAt.Time
		t.ModifiedAt = &v
	}
	return t, nil
}

func (r TripRepository) Create(ctx context.Context, t models.Trip) (int64, error) {
	res, err := r.conn().ExecContext(ctx, `
		INSERT INTO trips (
			user_id, vehicle_id, departure_location, arrival_location,
			dep_lat, dep_lng, arr_lat, arr_lng,
			departure_time, arrival_time,
			capacity, availability, price, status,
			created_at, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), ?)
	`,
		t.UserID, t.VehicleID, t.DepartureLocation, t.ArrivalLocation,
		t.DepLat, t.DepLng, t.ArrLat, t.ArrLng,
		t.DepartureTime, t.ArrivalTime,
		t.Capacity, t.Availability, t.Price, t.Status,
		t.CreatedBy,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r TripRepository) getOne(ctx context.Context, id int64, suffix string) (models.Trip, error) {
	if id <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	row := r.conn().QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips t WHERE t.id=? LIMIT 1`+suffix, id)
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return models.Trip{}, err
	}
	return t, nil
}

func (r TripRepository) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate reads the trip and holds its row lock until the surrounding
// transaction ends. Only meaningful on a repository bound with WithTx.
func (r TripRepository) GetForUpdate(ctx context.Context, id int64) (models.Trip, error) {
	return r.getOne(ctx, id, " FOR UPDATE")
}

// GetDetail joins the owning vehicle and user.
func (r TripRepository) GetDetail(ctx context.Context, id int64) (models.TripDetail, error) {
	if id <= 0 {
		return models.TripDetail{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	var (
		vID       sql.NullInt64
		vModel    sql.NullString
		vPlate    sql.NullString
		vColor    sql.NullString
		vCapacity sql.NullInt64
		uID       sql.NullInt64
		uName     sql.NullString
		uEmail    sql.NullString
		uPhone    sql.NullString
	)
	row := r.conn().QueryRowContext(ctx, `
		SELECT `+tripColumns+`,
			v.id, v.model, v.plate_number, v.color, v.capacity,
			u.id, u.name, u.email, u.phone_number
		FROM trips t
		LEFT JOIN vehicles v ON v.id = t.vehicle_id
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.id=? LIMIT 1
	`, id)
	t, err := scanTrip(row, &vID, &vModel, &vPlate, &vColor, &vCapacity, &uID, &uName, &uEmail, &uPhone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TripDetail{}, domain.NotFoundError{Resource: "trip", Err: err}
		}
		return models.TripDetail{}, err
	}

	out := models.TripDetail{Trip: t}
	if vID.Valid {
		out.Vehicle = &models.VehicleSummary{
			ID:          vID.Int64,
			Model:       nullStringPtr(vModel),
			PlateNumber: vPlate.String,
			Color:       nullStringPtr(vColor),
			Capacity:    int(vCapacity.Int64),
		}
	}
	if uID.Valid {
		out.User = &models.UserSummary{
			ID:          uID.Int64,
			Name:        uName.String,
			Email:       uEmail.String,
			PhoneNumber: nullStringPtr(uPhone),
		}
	}
	return out, nil
}

// List returns trips matching f in id order. Coordinate boxes are a coarse prefilter
// only; callers apply exact distance checks.
func (r TripRepository) List(ctx context.Context, f models.TripFilter) ([]models.Trip, error) {
	where := []string{"1=1"}
	args := []any{}

	if f.UserID != nil {
		where = append(where, "t.user_id=?")
		args = append(args, *f.UserID)
	}
	if f.Status != nil {
		where = append(where, "t.status=?")
		args = append(args, int(*f.Status))
	}
	for _, box := range f.Boxes {
		latCol, lngCol := "t.dep_lat", "t.dep_lng"
		if box.Point == models.ArrivalPoint {
			latCol, lngCol = "t.arr_lat", "t.arr_lng"
		}
		where = append(where, fmt.Sprintf("CAST(%s AS DECIMAL(11,8)) BETWEEN ? AND ?", latCol))
		args = append(args, box.MinLat, box.MaxLat)
		if !box.AnyLng {
			where = append(where, fmt.Sprintf("CAST(%s AS DECIMAL(11,8)) BETWEEN ? AND ?", lngCol))
			args = append(args, box.MinLng, box.MaxLng)
		}
	}

	query := `SELECT ` + tripColumns + ` FROM trips t WHERE ` + strings.Join(where, " AND ") + ` ORDER BY t.id ASC`
	rows, err := r.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DecrementAvailability takes one seat; false when none was left.
func (r TripRepository) DecrementAvailability(ctx context.Context, id, actor int64) (bool, error) {
	res, err := r.conn().ExecContext(ctx, `
		UPDATE trips
		SET availability = availability - 1, modified_at = NOW(), modified_by = ?
		WHERE id = ? AND availability > 0
	`, actor, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// IncrementAvailability returns n seats, never past the trip's capacity.
func (r TripRepository) IncrementAvailability(ctx context.Context, id int64, n int, actor int64) (bool, error) {
	if n <= 0 {
		return false, nil
	}
	res, err := r.conn().ExecContext(ctx, `
		UPDATE trips
		SET availability = LEAST(capacity, availability + ?), modified_at = NOW(), modified_by = ?
		WHERE id = ? AND availability < capacity
	`, n, actor, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r TripRepository) UpdateStatus(ctx context.Context, id int64, status domain.TripStatus, actor int64) error {
	_, err := r.conn().ExecContext(ctx, `
		UPDATE trips SET status = ?, modified_at = NOW(), modified_by = ? WHERE id = ?
	`, int(status), actor, id)
	return err
}

// Update performs PATCH-style updates based on pointer presence.
func (r TripRepository) Update(ctx context.Context, id int64, upd models.TripUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}

	if upd.VehicleID != nil {
		add("vehicle_id", *upd.VehicleID)
	}
	if upd.DepartureLocation != nil {
		add("departure_location", *upd.DepartureLocation)
	}
	if upd.ArrivalLocation != nil {
		add("arrival_location", *upd.ArrivalLocation)
	}
	if upd.DepLat != nil {
		add("dep_lat", *upd.DepLat)
	}
	if upd.DepLng != nil {
		add("dep_lng", *upd.DepLng)
	}
	if upd.ArrLat != nil {
		add("arr_lat", *upd.ArrLat)
	}
	if upd.ArrLng != nil {
		add("arr_lng", *upd.ArrLng)
	}
	if upd.DepartureTime != nil {
		add("departure_time", *upd.DepartureTime)
	}
	if upd.ArrivalTime != nil {
		add("arrival_time", *upd.ArrivalTime)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "modified_at=NOW()", "modified_by=?")
	args = append(args, upd.ModifiedBy, id)

	_, err := r.conn().ExecContext(ctx, `UPDATE trips SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	return err
}

func nullStringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
