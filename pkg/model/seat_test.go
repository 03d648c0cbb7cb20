package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestGenerateSeatSet_Deterministic(t *testing.T) {
	seats, err := GenerateSeatSet(10, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a1", "a2", "a3", "a4", "b1", "b2", "b3", "b4", "c1", "c2"}
	if len(seats) != len(want) {
		t.Fatalf("expected %d seats, got %d", len(want), len(seats))
	}
	for i, w := range want {
		if seats[i].SeatNumber != w {
			t.Errorf("seat %d: expected %q, got %q", i, w, seats[i].SeatNumber)
		}
		if seats[i].IsBooked() {
			t.Errorf("seat %q should be generated unbooked", w)
		}
	}
}

func TestGenerateSeatSet_ExactLengthAndUnique(t *testing.T) {
	tests := []struct {
		totalSeats  int
		seatsPerRow int
	}{
		{1, 1},
		{4, 4},
		{7, 3},
		{40, 4},
		{52, 2},
		{200, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d", tt.totalSeats, tt.seatsPerRow), func(t *testing.T) {
			seats, err := GenerateSeatSet(tt.totalSeats, tt.seatsPerRow)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(seats) != tt.totalSeats {
				t.Fatalf("expected %d seats, got %d", tt.totalSeats, len(seats))
			}

			seen := make(map[string]struct{}, len(seats))
			for _, s := range seats {
				if _, dup := seen[s.SeatNumber]; dup {
					t.Errorf("duplicate seat number %q", s.SeatNumber)
				}
				seen[s.SeatNumber] = struct{}{}
			}
		})
	}
}

func TestGenerateSeatSet_RowWrap(t *testing.T) {
	seats, err := GenerateSeatSet(5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a1", "a2", "b1", "b2", "c1"}
	for i, w := range want {
		if seats[i].SeatNumber != w {
			t.Errorf("seat %d: expected %q, got %q", i, w, seats[i].SeatNumber)
		}
	}
}

func TestGenerateSeatSet_CapacityExceeded(t *testing.T) {
	// 26 rows of 4 is the ceiling for seatsPerRow=4.
	if _, err := GenerateSeatSet(104, 4); err != nil {
		t.Errorf("104 seats at 4 per row should fit exactly, got error: %v", err)
	}

	_, err := GenerateSeatSet(105, 4)
	if !errors.Is(err, ErrSeatCapacityExceeded) {
		t.Errorf("expected ErrSeatCapacityExceeded, got %v", err)
	}
}

func TestGenerateSeatSet_InvalidConfig(t *testing.T) {
	for _, tt := range []struct{ totalSeats, seatsPerRow int }{
		{0, 4},
		{-1, 4},
		{10, 0},
		{10, -2},
	} {
		if _, err := GenerateSeatSet(tt.totalSeats, tt.seatsPerRow); !errors.Is(err, ErrSeatConfigInvalid) {
			t.Errorf("GenerateSeatSet(%d, %d): expected ErrSeatConfigInvalid, got %v", tt.totalSeats, tt.seatsPerRow, err)
		}
	}
}
