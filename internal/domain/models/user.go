package models

import "time"

type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	PhoneNumber  *string    `json:"phone_number"`
	Dob          *time.Time `json:"dob"`
	Status       *int       `json:"status"`
	VerifyStatus *int       `json:"verify_status"`
	ReferrerCode *string    `json:"referrer_code"`
	Type         *int       `json:"type"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    *int64     `json:"created_by"`
	ModifiedAt   *time.Time `json:"modified_at"`
	ModifiedBy   *int64     `json:"modified_by"`
}

// UserUpdate lists every mutable profile field; nil means untouched.
type UserUpdate struct {
	Name         *string
	Email        *string
	PhoneNumber  *string
	Dob          *time.Time
	Status       *int
	VerifyStatus *int
	ReferrerCode *string
	Type         *int
	ModifiedBy   *int64
}

type UserSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phone_number"`
}

// PasswordReset is one issued OTP.
type PasswordReset struct {
	ID        int64
	UserID    int64
	ResetType string
	OTPHash   string
	ExpiresAt time.Time
	UsedAt    *time.Time
}
