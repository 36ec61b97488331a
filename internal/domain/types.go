package domain

// ID is used across domain entities.
type ID int64

// TripStatus mirrors trips.status.
type TripStatus int

const (
	TripInactive TripStatus = 0
	TripActive   TripStatus = 1
)

// BookingStatus mirrors bookings.status.
type BookingStatus int

const (
	BookingPending   BookingStatus = 0
	BookingCancelled BookingStatus = 1
	BookingConfirmed BookingStatus = 2
)

func (s BookingStatus) String() string {
	switch s {
	case BookingPending:
		return "pending"
	case BookingCancelled:
		return "cancelled"
	case BookingConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Email  string `json:"email"`
}
