package notifications

import (
	"context"

	"busline/pkg/kafka"
	"busline/pkg/logger"
	"busline/pkg/model"
)

// Notifier consumes booking events and delivers passenger notifications.
// Delivery is currently a structured log entry; the handler is the seam
// where an email or SMS gateway plugs in.
type Notifier struct {
	log *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// Handle implements kafka.MessageHandler.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != EventBookingConfirmed {
		n.log.Debug("Skipping event of unhandled type",
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
		)
		return nil
	}

	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		// A malformed payload will never decode on retry.
		return kafka.Permanent(err)
	}

	n.log.Info("Booking confirmation notification",
		"event_id", msg.GetEventID(),
		"payment_id", event.PaymentID,
		"user_id", event.UserID,
		"bus_number", event.BusNumber,
		"seats", event.SeatNumbers,
		"amount", event.Amount,
		"journey_date", event.JourneyDate,
	)

	return nil
}
