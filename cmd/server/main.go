package main

import (
	"github.com/joho/godotenv"

	bushandler "busline/internal/buses/handler"
	busrepository "busline/internal/buses/repository"
	busservice "busline/internal/buses/service"
	busvalidator "busline/internal/buses/validator"
	"busline/internal/notifications"
	paymenthandler "busline/internal/payments/handler"
	paymentrepository "busline/internal/payments/repository"
	paymentservice "busline/internal/payments/service"
	paymentvalidator "busline/internal/payments/validator"
	userhandler "busline/internal/users/handler"
	userrepository "busline/internal/users/repository"
	userservice "busline/internal/users/service"
	uservalidator "busline/internal/users/validator"
	"busline/pkg/app"
	"busline/pkg/config"
	"busline/pkg/kafka"
	kafka_config "busline/pkg/kafka/config"
	"busline/pkg/middleware"
)

const ServiceName = "busline-api"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Busline API")

	authn := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)

	userRepo := userrepository.NewMongoUserRepository(cfg)
	busRepo := busrepository.NewMongoBusRepository(cfg)
	paymentRepo := paymentrepository.NewMongoPaymentRepository(cfg)

	userService := userservice.NewUserService(userRepo, uservalidator.NewUserValidator(cfg.Log), cfg)
	busService := busservice.NewBusService(busRepo, busvalidator.NewBusValidator(cfg.Log), cfg)

	var publisher paymentservice.BookingPublisher
	if cfg.KafkaEnabled {
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		defer producer.Close()

		publisher = notifications.NewKafkaBookingPublisher(producer)
		cfg.Log.Info("Booking event publishing enabled", "topic", cfg.KafkaBookingsTopic)
	}

	paymentService := paymentservice.NewPaymentService(
		paymentRepo,
		busRepo,
		userRepo,
		paymentvalidator.NewPaymentValidator(cfg.Log),
		publisher,
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		userhandler.NewUserHandler(userService, authn, cfg.Log),
		bushandler.NewBusHandler(busService, authn, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentService, authn, cfg.Log),
	)
	serverApp.Run()
}
