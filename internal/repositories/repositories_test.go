package repositories

import (
	"context"
	"database/sql"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var tripCols = []string{
	"id", "user_id", "vehicle_id", "departure_location", "arrival_location",
	"dep_lat", "dep_lng", "arr_lat", "arr_lng", "departure_time", "arrival_time",
	"capacity", "availability", "price", "status",
	"created_at", "created_by", "modified_at", "modified_by",
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestTripListBindsBoxBounds(t *testing.T) {
	db, mock := newMock(t)
	uid := int64(7)

	mock.ExpectQuery(`WHERE 1=1 AND t\.user_id=\? AND CAST\(t\.dep_lat AS DECIMAL\(11,8\)\) BETWEEN \? AND \? AND CAST\(t\.dep_lng AS DECIMAL\(11,8\)\) BETWEEN \? AND \? AND CAST\(t\.arr_lat AS DECIMAL\(11,8\)\) BETWEEN \? AND \? ORDER BY t\.id ASC`).
		WithArgs(int64(7), 1.0, 2.0, 3.0, 4.0, 5.0, 6.0).
		WillReturnRows(sqlmock.NewRows(tripCols))

	repo := TripRepository{DB: db}
	out, err := repo.List(context.Background(), models.TripFilter{
		UserID: &uid,
		Boxes: []models.CoordBox{
			{Point: models.DeparturePoint, MinLat: 1, MaxLat: 2, MinLng: 3, MaxLng: 4},
			{Point: models.ArrivalPoint, MinLat: 5, MaxLat: 6, AnyLng: true},
		},
	})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM trips t WHERE t\.id=\? LIMIT 1`).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(tripCols))

	_, err := TripRepository{DB: db}.GetByID(context.Background(), 3)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTripGetByIDRejectsBadID(t *testing.T) {
	if _, err := (TripRepository{}).GetByID(context.Background(), 0); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecrementAvailabilityReportsEmptyTrip(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`WHERE id = \? AND availability > 0`).WithArgs(int64(9), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := TripRepository{DB: db}.DecrementAvailability(context.Background(), 4, 9)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestIncrementAvailabilityIgnoresNonPositive(t *testing.T) {
	db, mock := newMock(t)
	ok, err := TripRepository{DB: db}.IncrementAvailability(context.Background(), 4, 0, 9)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement expected: %v", err)
	}
}

func TestTripUpdateWithoutFieldsIsNoop(t *testing.T) {
	db, mock := newMock(t)
	if err := (TripRepository{DB: db}).Update(context.Background(), 4, models.TripUpdate{ModifiedBy: 1}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement expected: %v", err)
	}
}

func TestTripUpdateSetsOnlyGivenColumns(t *testing.T) {
	db, mock := newMock(t)
	price := 9.5
	mock.ExpectExec(`UPDATE trips SET price=\?,modified_at=NOW\(\),modified_by=\? WHERE id=\?`).
		WithArgs(9.5, int64(2), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := (TripRepository{DB: db}).Update(context.Background(), 4, models.TripUpdate{Price: &price, ModifiedBy: 2}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkCancelledIsConditional(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`WHERE id = \? AND status <> \?`).WithArgs(1, int64(8), int64(30), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := BookingRepository{DB: db}.MarkCancelled(context.Background(), 30, 8)
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestDecodeImages(t *testing.T) {
	cases := map[string][]string{
		"":                          {},
		`["https://a","https://b"]`: {"https://a", "https://b"},
		"https://legacy/one.jpg":    {"https://legacy/one.jpg"},
	}
	for raw, want := range cases {
		got := decodeImages(raw)
		if len(got) != len(want) {
			t.Fatalf("decodeImages(%q) = %v, want %v", raw, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("decodeImages(%q) = %v, want %v", raw, got, want)
			}
		}
	}
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE email=\? LIMIT 1`).WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := UserRepository{DB: db}.GetByEmail(context.Background(), "ghost@example.com")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
