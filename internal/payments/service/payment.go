package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	buserrors "busline/internal/buses/errors"
	busrepository "busline/internal/buses/repository"
	paymentserrors "busline/internal/payments/errors"
	"busline/internal/payments/repository"
	"busline/internal/payments/validator"
	userrepository "busline/internal/users/repository"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	"busline/pkg/model"
	"busline/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingPublisher announces committed reservations to downstream
// consumers. Publishing is best-effort and happens after the commit.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event model.BookingEvent) error
}

type PaymentService interface {
	Reserve(ctx context.Context, userID string, req *model.ReservationRequest) (*model.ReservationResult, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Payment, int64, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	busRepo   busrepository.BusRepository
	userRepo  userrepository.UserRepository
	validator *validator.PaymentValidator
	publisher BookingPublisher
	cfg       *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	busRepo busrepository.BusRepository,
	userRepo userrepository.UserRepository,
	validator *validator.PaymentValidator,
	publisher BookingPublisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:      repo,
		busRepo:   busRepo,
		userRepo:  userRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Reserve books the requested seats and records the payment. The seat
// commit, the payment record and the booking-history append all happen
// in one transaction: either the caller owns every requested seat and
// the payment exists, or nothing changed.
func (s *paymentService) Reserve(ctx context.Context, userID string, req *model.ReservationRequest) (*model.ReservationResult, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}

	req.SeatNumbers = sanitizer.NormalizeSeatNumbers(req.SeatNumbers)

	if err := s.validator.ValidateReservation(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "user_id", userID, "error", err)
		return nil, apperrors.Validation("Invalid reservation input", map[string]any{"error": err.Error()})
	}

	if len(req.SeatNumbers) > s.cfg.MaxSeatsPerBooking {
		return nil, apperrors.Validation(
			fmt.Sprintf("At most %d seats can be reserved per booking", s.cfg.MaxSeatsPerBooking),
			map[string]any{"requested": len(req.SeatNumbers)},
		)
	}

	bus, err := s.loadBus(ctx, req.BusID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	amount := bus.Price * float64(len(req.SeatNumbers))
	marker := model.BookedMarker{
		Owner:       userID,
		BookingDate: now,
		JourneyDate: req.JourneyDate,
	}
	payment := &model.Payment{
		UserID:   userID,
		BusID:    req.BusID,
		Amount:   amount,
		Quantity: len(req.SeatNumbers),
		Success:  true,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.busRepo.ReserveSeats(sessCtx, req.BusID, req.SeatNumbers, marker); err != nil {
			if errors.Is(err, buserrors.ErrSeatsNotAvailable) {
				return s.classifySeatFailure(sessCtx, req.BusID, req.SeatNumbers)
			}
			return apperrors.Internal("Failed to reserve seats", err)
		}

		if err := s.repo.Create(sessCtx, payment); err != nil {
			return apperrors.Internal("Failed to record payment", err)
		}

		summary := model.BookingSummary{
			BusID:       req.BusID,
			SeatNumbers: req.SeatNumbers,
			TotalPrice:  amount,
			BookingDate: now,
			Status:      config.BookingConfirmed,
		}
		if err := s.userRepo.AppendBooking(sessCtx, userID, summary); err != nil {
			return apperrors.Internal("Failed to record booking history", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Reservation failed",
			"user_id", userID,
			"bus_id", req.BusID,
			"seats", req.SeatNumbers,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation committed",
		"payment_id", payment.ID,
		"user_id", userID,
		"bus_id", req.BusID,
		"seats", req.SeatNumbers,
		"amount", amount,
	)

	s.publishConfirmation(ctx, payment, bus, req)

	return &model.ReservationResult{
		Payment:     payment,
		SeatNumbers: req.SeatNumbers,
		Amount:      amount,
	}, nil
}

// classifySeatFailure turns a failed conditional update into a precise
// client error by re-reading the bus inside the same session.
func (s *paymentService) classifySeatFailure(ctx context.Context, busID string, seatNumbers []string) error {
	bus, err := s.busRepo.FindByID(ctx, busID)
	if err != nil {
		if errors.Is(err, buserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Bus", busID)
		}
		return apperrors.Internal("Failed to inspect seat state", err)
	}

	var unknown, taken []string
	for _, seatNumber := range seatNumbers {
		seat, ok := bus.SeatByNumber(seatNumber)
		if !ok {
			unknown = append(unknown, seatNumber)
			continue
		}
		if seat.IsBooked() {
			taken = append(taken, seatNumber)
		}
	}

	if len(unknown) > 0 {
		return apperrors.NotFound("Seat").WithDetails(map[string]any{
			"seats": unknown,
		})
	}
	if len(taken) > 0 {
		return apperrors.ConflictWithDetails("Seat(s) already booked", map[string]any{
			"seats": taken,
		})
	}

	return apperrors.Conflict("Seats are no longer available")
}

func (s *paymentService) loadBus(ctx context.Context, busID string) (*model.Bus, error) {
	bus, err := s.busRepo.FindByID(ctx, busID)
	if err != nil {
		if errors.Is(err, buserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Bus", busID)
		}
		if errors.Is(err, buserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid bus ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve bus", err)
	}
	return bus, nil
}

func (s *paymentService) publishConfirmation(ctx context.Context, payment *model.Payment, bus *model.Bus, req *model.ReservationRequest) {
	if s.publisher == nil {
		return
	}

	event := model.BookingEvent{
		PaymentID:   payment.ID,
		UserID:      payment.UserID,
		BusID:       payment.BusID,
		BusNumber:   bus.BusNumber,
		SeatNumbers: req.SeatNumbers,
		Amount:      payment.Amount,
		JourneyDate: req.JourneyDate,
		BookedAt:    payment.CreatedAt,
	}

	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		// The reservation is already durable; a missed event must not
		// fail the request.
		s.cfg.Log.Error("Failed to publish booking event",
			"payment_id", payment.ID,
			"error", err,
		)
	}
}

func (s *paymentService) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", id)
		}
		if errors.Is(err, paymentserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid payment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}

	return payment, nil
}

func (s *paymentService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Payment, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	var count int64
	var payments []*model.Payment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count payments", "error", errCount)
			errCount = apperrors.Internal("Failed to count payments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		payments, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list payments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve payments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return payments, count, nil
}
