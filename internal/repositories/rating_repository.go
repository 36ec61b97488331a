package repositories

import (
	"context"
	"database/sql"

	intconfig "rideshare/internal/config"
	intdb "rideshare/internal/db"
	"rideshare/internal/domain/models"
)

type RatingRepository struct {
	DB *sql.DB
}

func (r RatingRepository) conn() intdb.Querier {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Create stores a rating and returns it as persisted.
func (r RatingRepository) Create(ctx context.Context, rating models.BookingRating) (models.BookingRating, error) {
	res, err := r.conn().ExecContext(ctx, `
		INSERT INTO ratings (booking_id, rating, comment, created_at)
		VALUES (?, ?, ?, NOW())
	`, rating.BookingID, rating.Rating, intdb.NullIfNil(rating.Comment))
	if err != nil {
		return models.BookingRating{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.BookingRating{}, err
	}

	var out models.BookingRating
	var comment sql.NullString
	if err := r.conn().QueryRowContext(ctx, `
		SELECT id, booking_id, rating, comment, created_at FROM ratings WHERE id=? LIMIT 1
	`, id).Scan(&out.ID, &out.BookingID, &out.Rating, &comment, &out.CreatedAt); err != nil {
		return models.BookingRating{}, err
	}
	out.Comment = nullStringPtr(comment)
	return out, nil
}
