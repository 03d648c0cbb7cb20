package notifications

import (
	"context"

	"busline/pkg/kafka"
	"busline/pkg/model"
)

const (
	// EventBookingConfirmed is the event type stamped on messages
	// published after a reservation commits.
	EventBookingConfirmed = "booking.confirmed"

	sourceService = "busline-api"
)

// KafkaBookingPublisher publishes booking events keyed by bus ID so all
// events for one bus land on the same partition in order.
type KafkaBookingPublisher struct {
	producer *kafka.Producer
}

func NewKafkaBookingPublisher(producer *kafka.Producer) *KafkaBookingPublisher {
	return &KafkaBookingPublisher{producer: producer}
}

func (p *KafkaBookingPublisher) PublishBookingConfirmed(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BusID).
		WithValue(event).
		WithEventType(EventBookingConfirmed).
		WithSource(sourceService).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}
