package model

import (
	"time"
)

// Payment is an immutable ledger entry. One record is written per successful
// reservation and never updated afterwards.
type Payment struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	BusID     string    `json:"bus_id" bson:"bus_id" validate:"required,mongodb"`
	Amount    float64   `json:"amount" bson:"amount" validate:"required,gt=0"`
	Quantity  int       `json:"quantity" bson:"quantity" validate:"required,min=1"`
	Success   bool      `json:"success" bson:"success"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// ReservationRequest is the payment endpoint's input. The booking party comes
// from the bearer token, not the body.
type ReservationRequest struct {
	BusID       string    `json:"bus_id" validate:"required,mongodb"`
	SeatNumbers []string  `json:"seat_numbers" validate:"required,min=1,dive,required"`
	JourneyDate time.Time `json:"journey_date" validate:"required"`
}

// ReservationResult is returned once the seat commit, the payment record and
// the history append have all been persisted.
type ReservationResult struct {
	Payment     *Payment `json:"payment"`
	SeatNumbers []string `json:"seats"`
	Amount      float64  `json:"amount"`
}

// BookingEvent is the payload published to the booking events topic after a
// reservation commits.
type BookingEvent struct {
	PaymentID   string    `json:"payment_id"`
	UserID      string    `json:"user_id"`
	BusID       string    `json:"bus_id"`
	BusNumber   string    `json:"bus_number"`
	SeatNumbers []string  `json:"seat_numbers"`
	Amount      float64   `json:"amount"`
	JourneyDate time.Time `json:"journey_date"`
	BookedAt    time.Time `json:"booked_at"`
}
