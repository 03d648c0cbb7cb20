package model

import (
	"testing"
	"time"
)

func newTestBus(t *testing.T, totalSeats, seatsPerRow int) *Bus {
	t.Helper()
	bus := &Bus{
		BusNumber:   "dhk-101",
		TotalSeats:  totalSeats,
		SeatsPerRow: seatsPerRow,
		Price:       500,
	}
	if err := bus.GenerateSeats(); err != nil {
		t.Fatalf("GenerateSeats failed: %v", err)
	}
	return bus
}

func TestAvailableSeats_UnmaterializedDefaultsToTotal(t *testing.T) {
	bus := &Bus{TotalSeats: 40}
	if got := bus.AvailableSeats(); got != 40 {
		t.Errorf("expected 40 available seats for empty seat set, got %d", got)
	}
}

func TestAvailableSeats_DerivedFromSeatState(t *testing.T) {
	bus := newTestBus(t, 10, 4)

	if got := bus.AvailableSeats(); got != 10 {
		t.Fatalf("fresh bus: expected 10 available, got %d", got)
	}

	marker := &BookedMarker{Owner: "64f0aa11bb22cc33dd44ee55", BookingDate: time.Now()}
	bus.SeatSet[0].Booked = marker
	bus.SeatSet[3].Booked = marker

	if got := bus.AvailableSeats(); got != 8 {
		t.Errorf("after booking 2 seats: expected 8 available, got %d", got)
	}

	// availability == totalSeats - booked count, for every reachable state
	booked := 0
	for i := range bus.SeatSet {
		if bus.SeatSet[i].IsBooked() {
			booked++
		}
	}
	if bus.AvailableSeats() != bus.TotalSeats-booked {
		t.Errorf("availability invariant violated: %d != %d - %d", bus.AvailableSeats(), bus.TotalSeats, booked)
	}

	bus.SeatSet[0].Booked = nil
	if got := bus.AvailableSeats(); got != 9 {
		t.Errorf("after releasing a seat: expected 9 available, got %d", got)
	}
}

func TestSeatByNumber(t *testing.T) {
	bus := newTestBus(t, 10, 4)

	seat, ok := bus.SeatByNumber("b3")
	if !ok {
		t.Fatal("expected seat b3 to exist")
	}
	if seat.SeatNumber != "b3" {
		t.Errorf("expected seat b3, got %q", seat.SeatNumber)
	}

	if _, ok := bus.SeatByNumber("z99"); ok {
		t.Error("seat z99 should not exist on a 10-seat bus")
	}
}

func TestGenerateSeats_DiscardsExistingBookings(t *testing.T) {
	bus := newTestBus(t, 10, 4)
	bus.SeatSet[0].Booked = &BookedMarker{Owner: "64f0aa11bb22cc33dd44ee55"}

	bus.TotalSeats = 12
	if err := bus.GenerateSeats(); err != nil {
		t.Fatalf("GenerateSeats failed: %v", err)
	}

	if len(bus.SeatSet) != 12 {
		t.Fatalf("expected 12 seats after regeneration, got %d", len(bus.SeatSet))
	}
	if bus.AvailableSeats() != 12 {
		t.Errorf("regeneration should clear bookings, got %d available", bus.AvailableSeats())
	}
}

func TestBusResponse_ExposesAvailability(t *testing.T) {
	bus := newTestBus(t, 10, 4)
	bus.SeatSet[0].Booked = &BookedMarker{Owner: "64f0aa11bb22cc33dd44ee55"}

	resp := bus.Response()
	if resp.AvailableSeats != 9 {
		t.Errorf("expected response availability 9, got %d", resp.AvailableSeats)
	}
}
