package model

import (
	"time"
)

// Stop is one end of a bus route.
type Stop struct {
	Location string    `json:"location" bson:"location" validate:"required,min=2,max=100"`
	Time     time.Time `json:"time" bson:"time" validate:"required"`
}

// Bus owns its seat sequence. Seats are generated exactly once at creation;
// regeneration is an explicit, destructive operation surfaced through
// BusUpdate.RegenerateSeats.
type Bus struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusNumber   string    `json:"bus_number" bson:"bus_number" validate:"required,min=2,max=20"`
	TotalSeats  int       `json:"total_seats" bson:"total_seats" validate:"required,min=1,max=200"`
	SeatsPerRow int       `json:"seats_per_row" bson:"seats_per_row" validate:"required,min=1,max=10"`
	Price       float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Departure   Stop      `json:"departure" bson:"departure" validate:"required"`
	Arrival     Stop      `json:"arrival" bson:"arrival" validate:"required"`
	Amenities   []string  `json:"amenities" bson:"amenities" validate:"omitempty,dive,oneof=waterbottle charger wifi"`
	BusType     []string  `json:"bus_type" bson:"bus_type" validate:"omitempty,dive,oneof=ac non-ac sleeper"`
	SeatSet     []Seat    `json:"-" bson:"seat_set"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// AvailableSeats is always derived from seat state, never stored. A bus whose
// seat sequence has not been materialized yet reports all seats free.
func (b *Bus) AvailableSeats() int {
	if len(b.SeatSet) == 0 {
		return b.TotalSeats
	}

	available := 0
	for i := range b.SeatSet {
		if !b.SeatSet[i].IsBooked() {
			available++
		}
	}
	return available
}

// SeatByNumber looks up a seat by its identifier.
func (b *Bus) SeatByNumber(seatNumber string) (*Seat, bool) {
	for i := range b.SeatSet {
		if b.SeatSet[i].SeatNumber == seatNumber {
			return &b.SeatSet[i], true
		}
	}
	return nil, false
}

// GenerateSeats materializes the seat sequence from the current seat config.
// Any existing seats, including booked ones, are discarded.
func (b *Bus) GenerateSeats() error {
	seats, err := GenerateSeatSet(b.TotalSeats, b.SeatsPerRow)
	if err != nil {
		return err
	}
	b.SeatSet = seats
	return nil
}

// BusUpdate carries a partial update. Changing TotalSeats or SeatsPerRow
// discards all bookings, so it is only honored together with the explicit
// RegenerateSeats flag.
type BusUpdate struct {
	BusNumber       string   `json:"bus_number,omitempty" validate:"omitempty,min=2,max=20"`
	TotalSeats      *int     `json:"total_seats,omitempty" validate:"omitempty,min=1,max=200"`
	SeatsPerRow     *int     `json:"seats_per_row,omitempty" validate:"omitempty,min=1,max=10"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Departure       *Stop    `json:"departure,omitempty"`
	Arrival         *Stop    `json:"arrival,omitempty"`
	Amenities       []string `json:"amenities,omitempty" validate:"omitempty,dive,oneof=waterbottle charger wifi"`
	BusType         []string `json:"bus_type,omitempty" validate:"omitempty,dive,oneof=ac non-ac sleeper"`
	RegenerateSeats bool     `json:"regenerate_seats,omitempty"`
}

// BusResponse is the API shape of a bus: the seat set stays internal and the
// derived availability is exposed instead.
type BusResponse struct {
	*Bus
	AvailableSeats int `json:"available_seats"`
}

func (b *Bus) Response() *BusResponse {
	return &BusResponse{
		Bus:            b,
		AvailableSeats: b.AvailableSeats(),
	}
}
