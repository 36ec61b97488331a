package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCreateBookingTakesOneSeat(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlTripLock).WithArgs(int64(5)).
		WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 2, Price: 15}))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(5), int64(11), int64(1), 15.0, int64(0), int64(11), `{"name":"gate"}`, nil).
		WillReturnResult(sqlmock.NewResult(90, 1))
	mock.ExpectExec(sqlDecrement).WithArgs(int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlBookingGet).WithArgs(int64(90)).
		WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectCommit()

	svc := BookingService{DB: db}
	b, err := svc.CreateBooking(context.Background(), 5, CreateBookingInput{
		UserID:      11,
		Seat:        1,
		PickupPoint: json.RawMessage(`{"name":"gate"}`),
	})
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}
	if b.ID != 90 || b.Status != domain.BookingPending || b.Price != 15 {
		t.Fatalf("unexpected booking %+v", b)
	}
	assertMet(t, mock)
}

func TestCreateBookingUsesSuppliedPrice(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlTripLock).WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 1, Price: 15}))
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(int64(5), int64(11), int64(1), 9.5, int64(0), int64(11), nil, nil).
		WillReturnResult(sqlmock.NewResult(91, 1))
	mock.ExpectExec(sqlDecrement).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlBookingGet).WillReturnRows(bookingRow(91, 5, 11, 0, 9.5))
	mock.ExpectCommit()

	price := 9.5
	svc := BookingService{DB: db}
	if _, err := svc.CreateBooking(context.Background(), 5, CreateBookingInput{UserID: 11, Seat: 1, Price: &price}); err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}
	assertMet(t, mock)
}

func TestCreateBookingRejectsFullTrip(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlTripLock).WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 0}))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err := svc.CreateBooking(context.Background(), 5, CreateBookingInput{UserID: 11, Seat: 1})
	if !domain.IsConflict(err) || !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected no-seats conflict, got %v", err)
	}
	assertMet(t, mock)
}

func TestCreateBookingLosingConditionalDecrementRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlTripLock).WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 1}))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(92, 1))
	mock.ExpectExec(sqlDecrement).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err := svc.CreateBooking(context.Background(), 5, CreateBookingInput{UserID: 11, Seat: 1})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	assertMet(t, mock)
}

func TestCreateBookingInsertFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlTripLock).WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 3}))
	mock.ExpectExec("INSERT INTO bookings").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err := svc.CreateBooking(context.Background(), 5, CreateBookingInput{UserID: 11, Seat: 1})
	if !domain.IsInternal(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	assertMet(t, mock)
}

func TestCreateBookingUnknownTrip(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlTripLock).WillReturnRows(sqlmock.NewRows(tripCols))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err := svc.CreateBooking(context.Background(), 5, CreateBookingInput{UserID: 11, Seat: 1})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	assertMet(t, mock)
}

func TestCreateBookingValidation(t *testing.T) {
	svc := BookingService{}
	cases := []struct {
		name   string
		tripID int64
		in     CreateBookingInput
	}{
		{"bad trip", 0, CreateBookingInput{UserID: 1, Seat: 1}},
		{"no user", 1, CreateBookingInput{Seat: 1}},
		{"no seat", 1, CreateBookingInput{UserID: 1}},
		{"bad pickup", 1, CreateBookingInput{UserID: 1, Seat: 1, PickupPoint: json.RawMessage(`{`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(context.Background(), tc.tripID, tc.in)
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCancelBookingReturnsSeat(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlBookingGet).WithArgs(int64(90)).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectQuery(sqlTripLock).WithArgs(int64(5)).WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 1}))
	mock.ExpectQuery(sqlBookingLock).WithArgs(int64(90)).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectExec(sqlMarkCanceled).WithArgs(int64(1), int64(11), int64(90), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlIncrement).WithArgs(1, int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: db}
	res, err := svc.CancelBooking(context.Background(), 90, 11)
	if err != nil {
		t.Fatalf("CancelBooking error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success")
	}
	assertMet(t, mock)
}

func TestCancelBookingTwiceIsConflict(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlBookingGet).WillReturnRows(bookingRow(90, 5, 11, 1, 15))
	mock.ExpectQuery(sqlTripLock).WillReturnRows(tripRows(tripFixture{ID: 5, Availability: 2}))
	mock.ExpectQuery(sqlBookingLock).WillReturnRows(bookingRow(90, 5, 11, 1, 15))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err := svc.CancelBooking(context.Background(), 90, 11)
	if !domain.IsConflict(err) || !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("expected already-cancelled conflict, got %v", err)
	}
	assertMet(t, mock)
}

func TestCancelBookingToleratesMissingTrip(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlBookingGet).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectQuery(sqlTripLock).WillReturnRows(sqlmock.NewRows(tripCols))
	mock.ExpectQuery(sqlBookingLock).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectExec(sqlMarkCanceled).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{DB: db}
	if _, err := svc.CancelBooking(context.Background(), 90, 11); err != nil {
		t.Fatalf("CancelBooking error: %v", err)
	}
	assertMet(t, mock)
}

func TestCancelBookingUnknown(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlBookingGet).WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	svc := BookingService{DB: db}
	_, err := svc.CancelBooking(context.Background(), 90, 11)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	assertMet(t, mock)
}

func TestCancelAllForTripTxRestoresCount(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE bookings SET status = \?, modified_at = NOW\(\), modified_by = \? WHERE trip_id = \?`).
		WithArgs(int64(1), int64(7), int64(5), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(sqlIncrement).WithArgs(3, int64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := BookingService{DB: db}
	n, err := svc.CancelAllForTripTx(context.Background(), db, 5, 7)
	if err != nil {
		t.Fatalf("CancelAllForTripTx error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 cancelled, got %d", n)
	}
	assertMet(t, mock)
}

func TestRateBooking(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(sqlBookingGet).WithArgs(int64(90)).WillReturnRows(bookingRow(90, 5, 11, 1, 15))
	mock.ExpectExec("INSERT INTO ratings").WithArgs(int64(90), 4, "smooth ride").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM ratings WHERE id=").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "rating", "comment", "created_at"}).
			AddRow(int64(3), int64(90), int64(4), "smooth ride", fixedNow))

	comment := "  smooth ride "
	svc := BookingService{DB: db}
	r, err := svc.RateBooking(context.Background(), 90, 4, &comment)
	if err != nil {
		t.Fatalf("RateBooking error: %v", err)
	}
	if r.ID != 3 || r.Comment == nil || *r.Comment != "smooth ride" {
		t.Fatalf("unexpected rating %+v", r)
	}
	assertMet(t, mock)
}

func TestRateBookingOutOfRange(t *testing.T) {
	svc := BookingService{}
	for _, v := range []int{0, 6} {
		if _, err := svc.RateBooking(context.Background(), 90, v, nil); !domain.IsValidation(err) {
			t.Fatalf("rating %d: expected validation error, got %v", v, err)
		}
	}
}

func TestGetReceiptWithoutTrip(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(sqlBookingGet).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectQuery(sqlTripGet).WithArgs(int64(5)).WillReturnRows(sqlmock.NewRows(tripCols))

	svc := BookingService{DB: db}
	r, err := svc.GetReceipt(context.Background(), 90)
	if err != nil {
		t.Fatalf("GetReceipt error: %v", err)
	}
	if r.Trip != nil || r.Booking.ID != 90 || r.Booking.Price != 15 {
		t.Fatalf("unexpected receipt %+v", r)
	}
	assertMet(t, mock)
}

func TestBookingLifecycleRestoresSeatAndRanksTrip(t *testing.T) {
	db, mock := newMock(t)
	ctx := context.Background()
	bookings := BookingService{DB: db}

	const capacity = 2
	seats := int64(capacity)
	trip := func() tripFixture {
		return tripFixture{ID: 5, DepLat: "51.5", DepLng: "-0.1", ArrLat: "51.6", ArrLng: "-0.2",
			Capacity: capacity, Availability: seats, Price: 15}
	}

	book := func(bookingID, userID int64) error {
		mock.ExpectBegin()
		mock.ExpectQuery(sqlTripLock).WithArgs(int64(5)).WillReturnRows(tripRows(trip()))
		if seats > 0 {
			mock.ExpectExec("INSERT INTO bookings").
				WithArgs(int64(5), userID, int64(1), 15.0, int64(0), userID, nil, nil).
				WillReturnResult(sqlmock.NewResult(bookingID, 1))
			mock.ExpectExec(sqlDecrement).WithArgs(userID, int64(5)).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(sqlBookingGet).WithArgs(bookingID).
				WillReturnRows(bookingRow(bookingID, 5, userID, 0, 15))
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
		_, err := bookings.CreateBooking(ctx, 5, CreateBookingInput{UserID: userID, Seat: 1})
		if err == nil {
			seats--
		}
		return err
	}

	if err := book(90, 11); err != nil || seats != 1 {
		t.Fatalf("first booking: err=%v availability=%d", err, seats)
	}
	if err := book(91, 12); err != nil || seats != 0 {
		t.Fatalf("second booking: err=%v availability=%d", err, seats)
	}
	err := book(92, 13)
	if !domain.IsConflict(err) || !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected no-seats conflict on third booking, got %v", err)
	}
	if seats != 0 {
		t.Fatalf("availability changed by a rejected booking: %d", seats)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(sqlBookingGet).WithArgs(int64(90)).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectQuery(sqlTripLock).WithArgs(int64(5)).WillReturnRows(tripRows(trip()))
	mock.ExpectQuery(sqlBookingLock).WithArgs(int64(90)).WillReturnRows(bookingRow(90, 5, 11, 0, 15))
	mock.ExpectExec(sqlMarkCanceled).WithArgs(int64(1), int64(11), int64(90), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlIncrement).WithArgs(1, int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := bookings.CancelBooking(ctx, 90, 11)
	if err != nil || !res.Success {
		t.Fatalf("cancel first booking: res=%+v err=%v", res, err)
	}
	seats++
	assertMet(t, mock)

	// 8 km due north of the query point
	far := tripFixture{ID: 6, DepLat: "51.571946", DepLng: "-0.1", ArrLat: "51.6", ArrLng: "-0.2",
		Capacity: capacity, Availability: capacity, Price: 15}
	search := TripSearchService{TripRepo: repositories.TripRepository{DB: db}}

	mock.ExpectQuery(`FROM trips t`).WillReturnRows(tripRows(trip(), far))
	got, err := search.Search(ctx, SearchTripsQuery{
		DestinationLat: strp("51.5"), DestinationLng: strp("-0.1"), Radius: strp("5"),
	})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("expected only trip 5 within 5km, got %+v", got)
	}
	if got[0].Availability != 1 {
		t.Fatalf("expected restored availability 1, got %d", got[0].Availability)
	}

	mock.ExpectQuery(`FROM trips t`).WillReturnRows(tripRows(far, trip()))
	got, err = search.Search(ctx, SearchTripsQuery{
		DestinationLat: strp("51.5"), DestinationLng: strp("-0.1"),
	})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 5 || got[1].ID != 6 {
		t.Fatalf("expected trip 5 ranked before trip 6, got %+v", got)
	}
	if d := *got[1].DestinationDistanceKm; math.Abs(d-8) > 0.01 {
		t.Fatalf("expected far trip at 8km, got %v", d)
	}
	assertMet(t, mock)
}
