package main

import (
	"context"
	"time"

	availabilityhandler "gateless/internal/availability/handler"
	availabilityservice "gateless/internal/availability/service"
	bookingshandler "gateless/internal/bookings/handler"
	bookingsrepo "gateless/internal/bookings/repository"
	bookingsservice "gateless/internal/bookings/service"
	bookingsvalidator "gateless/internal/bookings/validator"
	locationshandler "gateless/internal/locations/handler"
	locationsrepo "gateless/internal/locations/repository"
	locationsservice "gateless/internal/locations/service"
	locationsvalidator "gateless/internal/locations/validator"
	"gateless/pkg/app"
	"gateless/pkg/config"
	"gateless/pkg/kafka"
	kafka_config "gateless/pkg/kafka/config"
	"gateless/pkg/notify"
	"gateless/pkg/payment"
)

const ServiceName = "parking"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting parking service")

	locationRepo := locationsrepo.NewMongoLocationRepository(cfg)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewSlotLockRepository(cfg)
	ensureIndexes(cfg, locationRepo, bookingRepo, lockRepo)

	notifier := initNotifier(cfg)

	locationService := locationsservice.NewLocationService(
		locationRepo,
		locationsvalidator.NewLocationValidator(cfg.Log),
		cfg,
	)
	availabilityService := availabilityservice.NewAvailabilityService(locationRepo, bookingRepo, cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		lockRepo,
		locationRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		payment.NewHTTPProvider(cfg.PaymentBaseURL, cfg.Log),
		notifier,
		cfg,
	)

	cfg.Log.Info("Parking services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		notifier,
		locationshandler.NewLocationHandler(locationService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func ensureIndexes(
	cfg *config.Config,
	locationRepo locationsrepo.LocationRepository,
	bookingRepo bookingsrepo.BookingRepository,
	lockRepo bookingsrepo.SlotLockRepository,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := locationRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create location indexes", "error", err)
	}
	if err := bookingRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create booking indexes", "error", err)
	}
	if err := lockRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to create slot lock indexes", "error", err)
	}
	cfg.Log.Info("Database indexes ensured")
}

func initNotifier(cfg *config.Config) notify.Gateway {
	if !cfg.NotifyEnabled {
		cfg.Log.Info("Booking confirmations disabled")
		return notify.NopGateway{}
	}

	kafkaCfg := kafka_config.Load()
	producer := kafka.NewProducer(kafkaCfg, cfg.NotifyTopic, cfg.Log)
	cfg.Log.Info("Booking confirmation publisher initialized",
		"topic", cfg.NotifyTopic,
		"brokers", kafkaCfg.Brokers,
	)
	return notify.NewKafkaGateway(producer, ServiceName, cfg.Log)
}
