package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var tripCols = []string{
	"id", "user_id", "vehicle_id", "departure_location", "arrival_location",
	"dep_lat", "dep_lng", "arr_lat", "arr_lng", "departure_time", "arrival_time",
	"capacity", "availability", "price", "status",
	"created_at", "created_by", "modified_at", "modified_by",
}

var bookingCols = []string{
	"id", "trip_id", "user_id", "seat", "price", "status",
	"created_at", "created_by", "modified_at", "modified_by",
	"pickup_point", "pickup_lat_lng",
}

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type tripFixture struct {
	ID           int64
	UserID       int64
	DepLat       string
	DepLng       string
	ArrLat       string
	ArrLng       string
	Capacity     int64
	Availability int64
	Price        float64
}

func addTrip(rows *sqlmock.Rows, f tripFixture) *sqlmock.Rows {
	if f.UserID == 0 {
		f.UserID = 7
	}
	if f.Capacity == 0 {
		f.Capacity = 4
	}
	if f.DepLat == "" {
		f.DepLat, f.DepLng, f.ArrLat, f.ArrLng = "0", "0", "0", "0"
	}
	return rows.AddRow(
		f.ID, f.UserID, int64(3), "Central Station", "Airport",
		f.DepLat, f.DepLng, f.ArrLat, f.ArrLng, fixedNow, fixedNow.Add(time.Hour),
		f.Capacity, f.Availability, f.Price, int64(1),
		fixedNow, f.UserID, nil, f.UserID,
	)
}

func tripRows(fs ...tripFixture) *sqlmock.Rows {
	rows := sqlmock.NewRows(tripCols)
	for _, f := range fs {
		addTrip(rows, f)
	}
	return rows
}

func bookingRow(id, tripID, userID int64, status int64, price float64) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(
		id, tripID, userID, int64(1), price, status,
		fixedNow, userID, nil, int64(0),
		nil, nil,
	)
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

func assertMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

const (
	sqlTripLock     = `FROM trips t WHERE t\.id=\? LIMIT 1 FOR UPDATE`
	sqlTripGet      = `FROM trips t WHERE t\.id=\? LIMIT 1$`
	sqlBookingLock  = `FROM bookings WHERE id=\? LIMIT 1 FOR UPDATE`
	sqlBookingGet   = `FROM bookings WHERE id=\? LIMIT 1$`
	sqlDecrement    = `UPDATE trips SET availability = availability - 1`
	sqlIncrement    = `UPDATE trips SET availability = LEAST\(capacity, availability \+ \?\)`
	sqlMarkCanceled = `UPDATE bookings SET status = \?, modified_at = NOW\(\), modified_by = \? WHERE id = \?`
)
