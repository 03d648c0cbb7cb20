package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "busline"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTTTL     = 30 * time.Minute
	DefaultBcryptCost = 10

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultSeatsPerRow = 4
	DefaultMaxSeatsPerBooking = 2

	DefaultKafkaBookingsTopic = "booking-events"

	DefaultPaginationLimit = 100

	// Seat rows are lettered a-z, so a bus can never hold more than
	// 26 rows worth of seats for a given seats_per_row.
	MaxSeatRows = 26
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingPending   = "pending"
)
