package service

import (
	"context"
	"testing"
	"time"

	buserrors "busline/internal/buses/errors"
	"busline/internal/buses/repository"
	"busline/internal/buses/validator"
	"busline/pkg/config"
	mongotx "busline/pkg/db/mongo"
	apperrors "busline/pkg/errors"
	"busline/pkg/logger"
	"busline/pkg/model"
)

type mockBusRepository struct {
	createFunc       func(ctx context.Context, bus *model.Bus) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Bus, error)
	findAllFunc      func(ctx context.Context, filter repository.BusFilter, limit int, offset int64) ([]*model.Bus, error)
	countFunc        func(ctx context.Context, filter repository.BusFilter) (int64, error)
	updateFunc       func(ctx context.Context, id string, bus *model.Bus, replaceSeats bool) error
	deleteFunc       func(ctx context.Context, id string) error
	reserveSeatsFunc func(ctx context.Context, id string, seatNumbers []string, marker model.BookedMarker) error
}

func (m *mockBusRepository) Create(ctx context.Context, bus *model.Bus) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, bus)
	}
	bus.ID = "64f100000000000000000001"
	return nil
}

func (m *mockBusRepository) FindByID(ctx context.Context, id string) (*model.Bus, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, buserrors.ErrNotFound
}

func (m *mockBusRepository) FindAll(ctx context.Context, filter repository.BusFilter, limit int, offset int64) ([]*model.Bus, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Bus{}, nil
}

func (m *mockBusRepository) Count(ctx context.Context, filter repository.BusFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBusRepository) Update(ctx context.Context, id string, bus *model.Bus, replaceSeats bool) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, bus, replaceSeats)
	}
	return nil
}

func (m *mockBusRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBusRepository) ReserveSeats(ctx context.Context, id string, seatNumbers []string, marker model.BookedMarker) error {
	if m.reserveSeatsFunc != nil {
		return m.reserveSeatsFunc(ctx, id, seatNumbers, marker)
	}
	return nil
}

func (m *mockBusRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:                log,
		DefaultSeatsPerRow: 4,
	}
}

func newTestBusService(repo *mockBusRepository) BusService {
	cfg := testConfig()
	return NewBusService(repo, validator.NewBusValidator(cfg.Log), cfg)
}

func validBus() *model.Bus {
	departure := time.Now().Add(24 * time.Hour)
	return &model.Bus{
		BusNumber:   "BL-204",
		TotalSeats:  10,
		SeatsPerRow: 4,
		Price:       49.5,
		Departure:   model.Stop{Location: "Tel Aviv", Time: departure},
		Arrival:     model.Stop{Location: "Haifa", Time: departure.Add(90 * time.Minute)},
		BusType:     []string{"ac"},
	}
}

func TestCreate_GeneratesSeatSet(t *testing.T) {
	var created *model.Bus
	repo := &mockBusRepository{
		createFunc: func(ctx context.Context, bus *model.Bus) error {
			created = bus
			bus.ID = "64f100000000000000000001"
			return nil
		},
	}
	service := newTestBusService(repo)

	bus := validBus()
	if err := service.Create(context.Background(), bus); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if len(created.SeatSet) != 10 {
		t.Fatalf("expected 10 generated seats, got %d", len(created.SeatSet))
	}
	if created.SeatSet[0].SeatNumber != "a1" || created.SeatSet[9].SeatNumber != "c2" {
		t.Errorf("unexpected seat sequence boundaries: %q .. %q",
			created.SeatSet[0].SeatNumber, created.SeatSet[9].SeatNumber)
	}
	for i := range created.SeatSet {
		if created.SeatSet[i].IsBooked() {
			t.Fatalf("seat %s generated as booked", created.SeatSet[i].SeatNumber)
		}
	}
}

func TestCreate_SeatCapacityExceeded(t *testing.T) {
	service := newTestBusService(&mockBusRepository{})

	bus := validBus()
	bus.TotalSeats = 200
	bus.SeatsPerRow = 4 // 26 rows * 4 = 104 max

	err := service.Create(context.Background(), bus)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_DuplicateBusNumber(t *testing.T) {
	repo := &mockBusRepository{
		createFunc: func(ctx context.Context, bus *model.Bus) error {
			return buserrors.ErrDuplicateBusNumber
		},
	}
	service := newTestBusService(repo)

	err := service.Create(context.Background(), validBus())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreate_ArrivalBeforeDeparture(t *testing.T) {
	service := newTestBusService(&mockBusRepository{})

	bus := validBus()
	bus.Arrival.Time = bus.Departure.Time.Add(-time.Hour)

	err := service.Create(context.Background(), bus)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdate_SeatConfigChangeRequiresRegenerateFlag(t *testing.T) {
	existing := validBus()
	existing.ID = "64f100000000000000000001"
	if err := existing.GenerateSeats(); err != nil {
		t.Fatalf("failed to generate seats: %v", err)
	}

	repo := &mockBusRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Bus, error) {
			return existing, nil
		},
	}
	service := newTestBusService(repo)

	moreSeats := 20
	_, err := service.Update(context.Background(), existing.ID, &model.BusUpdate{
		TotalSeats: &moreSeats,
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict without regenerate_seats, got %v", err)
	}
}

func TestUpdate_RegenerateDiscardsBookings(t *testing.T) {
	existing := validBus()
	existing.ID = "64f100000000000000000001"
	if err := existing.GenerateSeats(); err != nil {
		t.Fatalf("failed to generate seats: %v", err)
	}
	existing.SeatSet[0].Booked = &model.BookedMarker{Owner: "64f000000000000000000001"}

	var updated *model.Bus
	var seatsReplaced bool
	repo := &mockBusRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Bus, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, bus *model.Bus, replaceSeats bool) error {
			updated = bus
			seatsReplaced = replaceSeats
			return nil
		},
	}
	service := newTestBusService(repo)

	moreSeats := 12
	_, err := service.Update(context.Background(), existing.ID, &model.BusUpdate{
		TotalSeats:      &moreSeats,
		RegenerateSeats: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
	if !seatsReplaced {
		t.Error("expected the regenerated seat set to be written")
	}
	if len(updated.SeatSet) != 12 {
		t.Fatalf("expected 12 regenerated seats, got %d", len(updated.SeatSet))
	}
	for i := range updated.SeatSet {
		if updated.SeatSet[i].IsBooked() {
			t.Fatalf("seat %s still booked after regeneration", updated.SeatSet[i].SeatNumber)
		}
	}
}

func TestUpdate_PriceOnlyKeepsSeatState(t *testing.T) {
	existing := validBus()
	existing.ID = "64f100000000000000000001"
	if err := existing.GenerateSeats(); err != nil {
		t.Fatalf("failed to generate seats: %v", err)
	}
	existing.SeatSet[3].Booked = &model.BookedMarker{Owner: "64f000000000000000000001"}

	var updated *model.Bus
	var seatsReplaced bool
	repo := &mockBusRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Bus, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, bus *model.Bus, replaceSeats bool) error {
			updated = bus
			seatsReplaced = replaceSeats
			return nil
		},
	}
	service := newTestBusService(repo)

	newPrice := 59.0
	_, err := service.Update(context.Background(), existing.ID, &model.BusUpdate{
		Price: &newPrice,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Price != 59.0 {
		t.Errorf("expected price 59.0, got %v", updated.Price)
	}
	if seatsReplaced {
		t.Error("an attribute-only update must not write the seat set")
	}
	if !updated.SeatSet[3].IsBooked() {
		t.Error("expected existing booking to survive a price update")
	}
	if updated.AvailableSeats() != 9 {
		t.Errorf("expected 9 available seats, got %d", updated.AvailableSeats())
	}
}

func TestGetSeats(t *testing.T) {
	existing := validBus()
	existing.ID = "64f100000000000000000001"
	if err := existing.GenerateSeats(); err != nil {
		t.Fatalf("failed to generate seats: %v", err)
	}

	repo := &mockBusRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Bus, error) {
			return existing, nil
		},
	}
	service := newTestBusService(repo)

	seats, err := service.GetSeats(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seats) != 10 {
		t.Fatalf("expected 10 seats, got %d", len(seats))
	}
}

func TestGetAll_NormalizesFilter(t *testing.T) {
	var captured repository.BusFilter
	repo := &mockBusRepository{
		findAllFunc: func(ctx context.Context, filter repository.BusFilter, limit int, offset int64) ([]*model.Bus, error) {
			captured = filter
			return []*model.Bus{}, nil
		},
		countFunc: func(ctx context.Context, filter repository.BusFilter) (int64, error) {
			return 0, nil
		},
	}
	service := newTestBusService(repo)

	_, _, err := service.GetAll(context.Background(), repository.BusFilter{
		Departure: "  Tel   Aviv ",
		Arrival:   " Haifa",
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Departure != "Tel Aviv" || captured.Arrival != "Haifa" {
		t.Errorf("expected normalized filter, got %+v", captured)
	}
}
