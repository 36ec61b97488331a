package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
)

const vehicleColumns = `id, user_id, model, plate_number, color, capacity, s3_imagelink,
	created_at, created_by, modified_at, modified_by`

type VehicleRepository struct {
	DB *sql.DB
}

func (r VehicleRepository) conn() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanVehicle(s rowScanner) (models.Vehicle, error) {
	var (
		v          models.Vehicle
		model      sql.NullString
		color      sql.NullString
		images     sql.NullString
		modifiedAt sql.NullTime
	)
	if err := s.Scan(
		&v.ID, &v.UserID, &model, &v.PlateNumber, &color, &v.Capacity, &images,
		&v.CreatedAt, &v.CreatedBy, &modifiedAt, &v.ModifiedBy,
	); err != nil {
		return models.Vehicle{}, err
	}
	v.Model = nullStringPtr(model)
	v.Color = nullStringPtr(color)
	v.ModifiedAt = nullTimePtr(modifiedAt)
	v.Images = decodeImages(images.String)
	return v, nil
}

// decodeImages tolerates legacy rows holding a bare URL instead of a JSON list.
func decodeImages(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{raw}
	}
	return out
}

func (r VehicleRepository) Create(ctx context.Context, v models.Vehicle) (int64, error) {
	var images any
	if len(v.Images) > 0 {
		b, err := json.Marshal(v.Images)
		if err != nil {
			return 0, err
		}
		images = string(b)
	}
	res, err := r.conn().ExecContext(ctx, `
		INSERT INTO vehicles (
			user_id, model, plate_number, color, capacity, s3_imagelink,
			created_at, created_by, modified_by
		) VALUES (?, ?, ?, ?, ?, ?, NOW(), ?, ?)
	`,
		v.UserID, intdb.NullIfNil(v.Model), v.PlateNumber, intdb.NullIfNil(v.Color),
		v.Capacity, images, v.CreatedBy, v.ModifiedBy,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "vehicle", Msg: "plate number already registered", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r VehicleRepository) GetByID(ctx context.Context, id int64) (models.Vehicle, error) {
	row := r.conn().QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=? LIMIT 1`, id)
	v, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle", Err: err}
		}
		return models.Vehicle{}, err
	}
	return v, nil
}

// List returns all vehicles, or only those of userID when given.
func (r VehicleRepository) List(ctx context.Context, userID *int64) ([]models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []any{}
	if userID != nil {
		query += ` WHERE user_id=?`
		args = append(args, *userID)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r VehicleRepository) Update(ctx context.Context, id int64, upd models.VehicleUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.UserID != nil {
		add("user_id", *upd.UserID)
	}
	if upd.Model != nil {
		add("model", *upd.Model)
	}
	if upd.PlateNumber != nil {
		add("plate_number", *upd.PlateNumber)
	}
	if upd.Color != nil {
		add("color", *upd.Color)
	}
	if upd.Capacity != nil {
		add("capacity", *upd.Capacity)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "modified_at=NOW()")
	if upd.ModifiedBy != nil {
		add("modified_by", *upd.ModifiedBy)
	}
	args = append(args, id)

	_, err := r.conn().ExecContext(ctx, `UPDATE vehicles SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	if err != nil && intdb.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: "vehicle", Msg: "plate number already registered", Err: err}
	}
	return err
}

func (r VehicleRepository) SetImages(ctx context.Context, id int64, images []string) error {
	b, err := json.Marshal(images)
	if err != nil {
		return err
	}
	_, err = r.conn().ExecContext(ctx, `UPDATE vehicles SET s3_imagelink=?, modified_at=NOW() WHERE id=?`, string(b), id)
	return err
}

func (r VehicleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn().ExecContext(ctx, `DELETE FROM vehicles WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
