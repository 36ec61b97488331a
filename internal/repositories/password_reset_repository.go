package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain"
	"rideshare/internal/domain/models"
)

type PasswordResetRepository struct {
	DB *sql.DB
}

func (r PasswordResetRepository) conn() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PasswordResetRepository) Create(ctx context.Context, userID int64, resetType, otpHash string, expiresAt time.Time) error {
	_, err := r.conn().ExecContext(ctx, `
		INSERT INTO password_resets (user_id, reset_type, otp_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, userID, resetType, otpHash, expiresAt)
	return err
}

// Latest returns the newest OTP issued to userID through resetType, used or not.
func (r PasswordResetRepository) Latest(ctx context.Context, userID int64, resetType string) (models.PasswordReset, error) {
	var (
		out    models.PasswordReset
		usedAt sql.NullTime
	)
	err := r.conn().QueryRowContext(ctx, `
		SELECT id, user_id, reset_type, otp_hash, expires_at, used_at
		FROM password_resets
		WHERE user_id=? AND reset_type=?
		ORDER BY id DESC
		LIMIT 1
	`, userID, resetType).Scan(&out.ID, &out.UserID, &out.ResetType, &out.OTPHash, &out.ExpiresAt, &usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PasswordReset{}, domain.NotFoundError{Resource: "otp", Err: err}
		}
		return models.PasswordReset{}, err
	}
	out.UsedAt = nullTimePtr(usedAt)
	return out, nil
}

// MarkUsed consumes an OTP; false when it had already been consumed.
func (r PasswordResetRepository) MarkUsed(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn().ExecContext(ctx, `UPDATE password_resets SET used_at=NOW() WHERE id=? AND used_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
