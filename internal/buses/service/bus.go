package service

import (
	"context"
	"errors"
	"sync"

	buserrors "busline/internal/buses/errors"
	"busline/internal/buses/repository"
	"busline/internal/buses/validator"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/model"
	"busline/pkg/sanitizer"
)

type BusService interface {
	Create(ctx context.Context, bus *model.Bus) error
	GetByID(ctx context.Context, id string) (*model.Bus, error)
	GetAll(ctx context.Context, filter repository.BusFilter, limit int, offset int64) ([]*model.Bus, int64, error)
	Update(ctx context.Context, id string, updates *model.BusUpdate) (*model.Bus, error)
	Delete(ctx context.Context, id string) error
	GetSeats(ctx context.Context, id string) ([]model.Seat, error)
}

type busService struct {
	repo      repository.BusRepository
	validator *validator.BusValidator
	cfg       *config.Config
}

func NewBusService(repo repository.BusRepository, validator *validator.BusValidator, cfg *config.Config) BusService {
	return &busService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *busService) Create(ctx context.Context, bus *model.Bus) error {
	s.sanitize(bus)

	if bus.SeatsPerRow == 0 {
		bus.SeatsPerRow = s.cfg.DefaultSeatsPerRow
	}

	if err := s.validator.Validate(bus); err != nil {
		s.cfg.Log.Warn("Bus validation failed", "error", err)
		return apperrors.Validation("Invalid bus input", map[string]any{"error": err.Error()})
	}

	if err := bus.GenerateSeats(); err != nil {
		return seatConfigError(err, bus)
	}

	if err := s.repo.Create(ctx, bus); err != nil {
		if errors.Is(err, buserrors.ErrDuplicateBusNumber) {
			return apperrors.Conflict("Bus number is already registered")
		}
		s.cfg.Log.Error("Failed to create bus", "error", err)
		return apperrors.Internal("Failed to create bus", err)
	}

	s.cfg.Log.Info("Bus created",
		"id", bus.ID,
		"bus_number", bus.BusNumber,
		"total_seats", bus.TotalSeats,
	)
	return nil
}

func (s *busService) GetByID(ctx context.Context, id string) (*model.Bus, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Bus ID cannot be empty")
	}

	bus, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, buserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bus", id)
		}
		if errors.Is(err, buserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid bus ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve bus", err)
	}

	return bus, nil
}

func (s *busService) GetAll(ctx context.Context, filter repository.BusFilter, limit int, offset int64) ([]*model.Bus, int64, error) {
	filter.Departure = sanitizer.NormalizeLocation(filter.Departure)
	filter.Arrival = sanitizer.NormalizeLocation(filter.Arrival)
	filter.BusType = sanitizer.TrimAndNormalize(filter.BusType)

	var count int64
	var buses []*model.Bus
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count buses", "error", errCount)
			errCount = apperrors.Internal("Failed to count buses", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		buses, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list buses", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve buses", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return buses, count, nil
}

func (s *busService) Update(ctx context.Context, id string, updates *model.BusUpdate) (*model.Bus, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Bus ID cannot be empty")
	}

	updates.BusNumber = sanitizer.TrimAndNormalize(updates.BusNumber)
	// NormalizeTags maps nil to an empty slice; an absent field must stay
	// nil so the merge can tell "not provided" from "cleared".
	if updates.Amenities != nil {
		updates.Amenities = sanitizer.NormalizeTags(updates.Amenities)
	}
	if updates.BusType != nil {
		updates.BusType = sanitizer.NormalizeTags(updates.BusType)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Bus update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seatConfigChanged := s.mergeBusUpdates(existing, updates)

	// A seat layout change silently dropping live bookings would be a
	// data-loss bug, so it has to be requested explicitly.
	if seatConfigChanged && !updates.RegenerateSeats {
		return nil, apperrors.ConflictWithDetails(
			"Changing the seat layout discards existing bookings",
			map[string]any{"required_flag": "regenerate_seats"},
		)
	}

	if err := s.validator.Validate(existing); err != nil {
		return nil, apperrors.Validation("Invalid bus state after update", map[string]any{"error": err.Error()})
	}

	if updates.RegenerateSeats {
		if err := existing.GenerateSeats(); err != nil {
			return nil, seatConfigError(err, existing)
		}
	}

	if err := s.repo.Update(ctx, id, existing, updates.RegenerateSeats); err != nil {
		if errors.Is(err, buserrors.ErrDuplicateBusNumber) {
			return nil, apperrors.Conflict("Bus number is already registered")
		}
		if errors.Is(err, buserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bus", id)
		}
		s.cfg.Log.Error("Failed to update bus", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update bus", err)
	}

	s.cfg.Log.Info("Bus updated", "id", id, "seats_regenerated", updates.RegenerateSeats)
	return existing, nil
}

func (s *busService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Bus ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, buserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Bus", id)
		}
		if errors.Is(err, buserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid bus ID format")
		}
		s.cfg.Log.Error("Failed to delete bus", "id", id, "error", err)
		return apperrors.Internal("Failed to delete bus", err)
	}

	s.cfg.Log.Info("Bus deleted", "id", id)
	return nil
}

func (s *busService) GetSeats(ctx context.Context, id string) ([]model.Seat, error) {
	bus, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return bus.SeatSet, nil
}

func (s *busService) sanitize(bus *model.Bus) {
	bus.BusNumber = sanitizer.TrimAndNormalize(bus.BusNumber)
	bus.Departure.Location = sanitizer.NormalizeLocation(bus.Departure.Location)
	bus.Arrival.Location = sanitizer.NormalizeLocation(bus.Arrival.Location)
	bus.Amenities = sanitizer.NormalizeTags(bus.Amenities)
	bus.BusType = sanitizer.NormalizeTags(bus.BusType)
}

// mergeBusUpdates applies non-zero fields onto the bus and reports whether
// the seat configuration changed.
func (s *busService) mergeBusUpdates(bus *model.Bus, updates *model.BusUpdate) bool {
	seatConfigChanged := false

	if updates.BusNumber != "" {
		bus.BusNumber = updates.BusNumber
	}
	if updates.TotalSeats != nil && *updates.TotalSeats != bus.TotalSeats {
		bus.TotalSeats = *updates.TotalSeats
		seatConfigChanged = true
	}
	if updates.SeatsPerRow != nil && *updates.SeatsPerRow != bus.SeatsPerRow {
		bus.SeatsPerRow = *updates.SeatsPerRow
		seatConfigChanged = true
	}
	if updates.Price != nil {
		bus.Price = *updates.Price
	}
	if updates.Departure != nil {
		bus.Departure = *updates.Departure
		bus.Departure.Location = sanitizer.NormalizeLocation(bus.Departure.Location)
	}
	if updates.Arrival != nil {
		bus.Arrival = *updates.Arrival
		bus.Arrival.Location = sanitizer.NormalizeLocation(bus.Arrival.Location)
	}
	if updates.Amenities != nil {
		bus.Amenities = updates.Amenities
	}
	if updates.BusType != nil {
		bus.BusType = updates.BusType
	}

	return seatConfigChanged
}

func seatConfigError(err error, bus *model.Bus) error {
	if errors.Is(err, model.ErrSeatCapacityExceeded) {
		return apperrors.Validation("Seat configuration exceeds layout capacity", map[string]any{
			"total_seats":   bus.TotalSeats,
			"seats_per_row": bus.SeatsPerRow,
		})
	}
	return apperrors.Validation("Invalid seat configuration", map[string]any{"error": err.Error()})
}
