package model

import (
	"time"
)

// BookingSummary is the denormalized entry appended to a user's booking
// history when a reservation commits.
type BookingSummary struct {
	BusID       string    `json:"bus_id" bson:"bus_id"`
	SeatNumbers []string  `json:"seat_numbers" bson:"seat_numbers"`
	TotalPrice  float64   `json:"total_price" bson:"total_price"`
	BookingDate time.Time `json:"booking_date" bson:"booking_date"`
	Status      string    `json:"status" bson:"status"`
}

type User struct {
	ID             string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string           `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email          string           `json:"email" bson:"email" validate:"required,email"`
	PasswordHash   string           `json:"-" bson:"password_hash"`
	Role           string           `json:"role" bson:"role" validate:"required,oneof=user admin"`
	BookingHistory []BookingSummary `json:"booking_history" bson:"booking_history"`
	CreatedAt      time.Time        `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserUpdate carries a partial account update. A supplied password is
// re-hashed before persisting.
type UserUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}
