package kafka

import (
	"context"
	"errors"
)

var (
	// ErrProducerClosed indicates the producer has been closed
	ErrProducerClosed = errors.New("kafka producer is closed")

	// ErrConsumerClosed indicates the consumer has been closed
	ErrConsumerClosed = errors.New("kafka consumer is closed")

	// ErrEmptyKey indicates the message key is empty
	ErrEmptyKey = errors.New("message key cannot be empty")

	// ErrEmptyValue indicates the message value is empty
	ErrEmptyValue = errors.New("message value cannot be empty")

	// ErrPermanentFailure marks errors that must not be retried
	ErrPermanentFailure = errors.New("permanent failure")
)

// Permanent wraps an error so the consumer skips retries and routes the
// message straight to the DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrPermanentFailure, err)
}

// ShouldRetry reports whether a failed message should be processed again.
func ShouldRetry(err error, retries, maxRetries int) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPermanentFailure) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return retries < maxRetries
}
