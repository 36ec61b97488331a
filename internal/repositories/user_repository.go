package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
)

const userColumns = `id, name, email, password, phone_number, dob, status, verify_status,
	referrer_code, type, created_at, created_by, modified_at, modified_by`

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) conn() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanUser(s rowScanner) (models.User, error) {
	var (
		u            models.User
		phone        sql.NullString
		dob          sql.NullTime
		status       sql.NullInt64
		verifyStatus sql.NullInt64
		referrer     sql.NullString
		userType     sql.NullInt64
		createdBy    sql.NullInt64
		modifiedAt   sql.NullTime
		modifiedBy   sql.NullInt64
	)
	if err := s.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &phone, &dob, &status, &verifyStatus,
		&referrer, &userType, &u.CreatedAt, &createdBy, &modifiedAt, &modifiedBy,
	); err != nil {
		return models.User{}, err
	}
	u.PhoneNumber = nullStringPtr(phone)
	u.Dob = nullTimePtr(dob)
	u.Status = nullIntPtr(status)
	u.VerifyStatus = nullIntPtr(verifyStatus)
	u.ReferrerCode = nullStringPtr(referrer)
	u.Type = nullIntPtr(userType)
	u.CreatedBy = nullInt64Ptr(createdBy)
	u.ModifiedAt = nullTimePtr(modifiedAt)
	u.ModifiedBy = nullInt64Ptr(modifiedBy)
	return u, nil
}

func (r UserRepository) Create(ctx context.Context, u models.User) (int64, error) {
	res, err := r.conn().ExecContext(ctx, `
		INSERT INTO users (
			name, email, password, phone_number, dob, status, verify_status,
			referrer_code, type, created_at, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), ?)
	`,
		u.Name, u.Email, u.Password,
		intdb.NullIfNil(u.PhoneNumber), intdb.NullIfNil(u.Dob),
		intdb.NullIfNil(u.Status), intdb.NullIfNil(u.VerifyStatus),
		intdb.NullIfNil(u.ReferrerCode), intdb.NullIfNil(u.Type),
		intdb.NullIfNil(u.CreatedBy),
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return 0, domain.ConflictError{Resource: "user", Msg: "email or phone number already registered", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r UserRepository) getBy(ctx context.Context, col string, v any) (models.User, error) {
	row := r.conn().QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+col+`=? LIMIT 1`, v)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, err
	}
	return u, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r UserRepository) GetByPhone(ctx context.Context, phone string) (models.User, error) {
	return r.getBy(ctx, "phone_number", phone)
}

func (r UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.conn().QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update performs PATCH-style updates based on pointer presence.
func (r UserRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.PhoneNumber != nil {
		add("phone_number", *upd.PhoneNumber)
	}
	if upd.Dob != nil {
		add("dob", *upd.Dob)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.VerifyStatus != nil {
		add("verify_status", *upd.VerifyStatus)
	}
	if upd.ReferrerCode != nil {
		add("referrer_code", *upd.ReferrerCode)
	}
	if upd.Type != nil {
		add("type", *upd.Type)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "modified_at=NOW()")
	if upd.ModifiedBy != nil {
		add("modified_by", *upd.ModifiedBy)
	}
	args = append(args, id)

	_, err := r.conn().ExecContext(ctx, `UPDATE users SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	if err != nil && intdb.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: "user", Msg: "email or phone number already registered", Err: err}
	}
	return err
}

func (r UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.conn().ExecContext(ctx, `UPDATE users SET password=?, modified_at=NOW() WHERE id=?`, hash, id)
	return err
}

// Delete removes a user; false when no row matched.
func (r UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn().ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func nullTimePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
