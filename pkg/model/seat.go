package model

import (
	"errors"
	"fmt"
	"time"
)

const seatRowLetters = "abcdefghijklmnopqrstuvwxyz"

var (
	ErrSeatConfigInvalid = errors.New("total seats and seats per row must be positive")

	// ErrSeatCapacityExceeded is returned when a seat layout would run past
	// row letter 'z'. The row alphabet caps a bus at 26*seatsPerRow seats.
	ErrSeatCapacityExceeded = errors.New("total seats exceed the 26-row seat layout capacity")
)

// BookedMarker marks a seat as taken. A nil marker means the seat is free.
type BookedMarker struct {
	Owner       string    `json:"owner" bson:"owner"`
	BookingDate time.Time `json:"booking_date" bson:"booking_date"`
	JourneyDate time.Time `json:"journey_date" bson:"journey_date"`
}

// Seat is one bookable unit on a bus. Seat numbers are generated once per
// bus and never change; only the Booked marker mutates.
type Seat struct {
	SeatNumber string        `json:"seat_number" bson:"seat_number"`
	Booked     *BookedMarker `json:"booked,omitempty" bson:"booked"`
}

func (s *Seat) IsBooked() bool {
	return s.Booked != nil
}

// GenerateSeatSet builds a deterministic row-major seat layout: row letters
// a, b, c, ... with 1-based column indexes, e.g. a1..a4, b1..b4 for
// seatsPerRow=4. The output length is exactly totalSeats.
func GenerateSeatSet(totalSeats, seatsPerRow int) ([]Seat, error) {
	if totalSeats <= 0 || seatsPerRow <= 0 {
		return nil, ErrSeatConfigInvalid
	}
	if totalSeats > len(seatRowLetters)*seatsPerRow {
		return nil, ErrSeatCapacityExceeded
	}

	seats := make([]Seat, 0, totalSeats)
	count := 0
	for row := 0; count < totalSeats; row++ {
		for col := 1; col <= seatsPerRow && count < totalSeats; col++ {
			seats = append(seats, Seat{
				SeatNumber: fmt.Sprintf("%c%d", seatRowLetters[row], col),
			})
			count++
		}
	}

	return seats, nil
}
