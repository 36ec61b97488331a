package db

import (
	"context"
	"fmt"
	"log"
)

type tableDDL struct {
	name string
	ddl  string
}

var schema = []tableDDL{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	password VARCHAR(255) NOT NULL,
	phone_number VARCHAR(20) NULL,
	dob DATE NULL,
	status INT NULL,
	verify_status INT NULL,
	referrer_code VARCHAR(50) NULL,
	type INT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	created_by BIGINT NULL,
	modified_at TIMESTAMP NULL,
	modified_by BIGINT NULL,
	UNIQUE KEY uniq_users_email (email),
	UNIQUE KEY uniq_users_phone (phone_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"vehicles", `
CREATE TABLE IF NOT EXISTS vehicles (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	model VARCHAR(100) NULL,
	plate_number VARCHAR(20) NOT NULL,
	color VARCHAR(50) NULL,
	capacity INT NOT NULL DEFAULT 0,
	s3_imagelink TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	created_by BIGINT NOT NULL DEFAULT 0,
	modified_at TIMESTAMP NULL,
	modified_by BIGINT NOT NULL DEFAULT 0,
	UNIQUE KEY uniq_vehicles_plate (plate_number),
	KEY idx_vehicles_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	vehicle_id BIGINT NOT NULL,
	departure_location VARCHAR(255) NOT NULL,
	arrival_location VARCHAR(255) NOT NULL,
	dep_lat VARCHAR(32) NOT NULL,
	dep_lng VARCHAR(32) NOT NULL,
	arr_lat VARCHAR(32) NOT NULL,
	arr_lng VARCHAR(32) NOT NULL,
	departure_time TIMESTAMP NOT NULL,
	arrival_time TIMESTAMP NOT NULL,
	capacity INT NOT NULL DEFAULT 0,
	availability INT NOT NULL DEFAULT 0,
	price DECIMAL(10,2) NOT NULL DEFAULT 0,
	status INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	created_by BIGINT NOT NULL DEFAULT 0,
	modified_at TIMESTAMP NULL,
	modified_by BIGINT NOT NULL DEFAULT 0,
	KEY idx_trips_user (user_id),
	CONSTRAINT chk_trips_availability CHECK (availability >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	seat INT NOT NULL,
	price DECIMAL(10,2) NOT NULL DEFAULT 0,
	status INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	created_by BIGINT NOT NULL DEFAULT 0,
	modified_at TIMESTAMP NULL,
	modified_by BIGINT NOT NULL DEFAULT 0,
	pickup_point JSON NULL,
	pickup_lat_lng VARCHAR(64) NULL,
	KEY idx_bookings_trip (trip_id),
	KEY idx_bookings_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"ratings", `
CREATE TABLE IF NOT EXISTS ratings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id BIGINT NOT NULL,
	rating INT NOT NULL,
	comment TEXT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_ratings_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"password_resets", `
CREATE TABLE IF NOT EXISTS password_resets (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	reset_type VARCHAR(10) NOT NULL,
	otp_hash VARCHAR(255) NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	used_at TIMESTAMP NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	KEY idx_password_resets_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

// EnsureSchema creates missing tables. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, t := range schema {
		if HasTable(ctx, q, t.name) {
			continue
		}
		if _, err := q.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Printf("[DB] created table %s", t.name)
	}
	return nil
}
