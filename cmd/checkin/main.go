package main

import (
	"checkinapp/internal/api"
	checkinhandler "checkinapp/internal/checkins/handler"
	checkinrepo "checkinapp/internal/checkins/repository"
	checkinservice "checkinapp/internal/checkins/service"
	checkinvalidator "checkinapp/internal/checkins/validator"
	"checkinapp/internal/events"
	"checkinapp/internal/locks"
	"checkinapp/internal/locks/store"
	"checkinapp/internal/sessions/handler"
	"checkinapp/internal/sessions/repository"
	"checkinapp/internal/sessions/scheduler"
	"checkinapp/internal/sessions/service"
	"checkinapp/internal/sessions/validator"
	"checkinapp/pkg/app"
	"checkinapp/pkg/config"
)

const ServiceName = "checkin"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting check-in service")

	lockMgr := locks.NewManager(store.NewMongoStore(cfg), locks.Options{
		TTL:         cfg.LockTTL,
		MaxAttempts: cfg.LockMaxAttempts,
		RetryDelay:  cfg.LockRetryDelay,
	}, cfg.Log)

	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}
	defer publisher.Close()

	sessionRepo := repository.NewMongoSessionRepository(cfg)
	sessionService := service.NewSessionService(
		sessionRepo,
		validator.NewSessionValidator(cfg.Log),
		cfg,
	)

	checkInService := checkinservice.NewCheckInService(
		checkinrepo.NewMongoCheckInRepository(cfg),
		checkinrepo.NewMongoRegistrationRepository(cfg),
		sessionRepo,
		lockMgr,
		publisher,
		checkinvalidator.NewCheckInValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Check-in service initialized", "database", cfg.MongoDatabaseName)

	router := api.NewRouter(
		handler.NewSessionHandler(sessionService, cfg.Log),
		checkinhandler.NewCheckInHandler(checkInService, cfg.Log),
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(router, lockMgr)
	serverApp.SetScheduler(scheduler.NewScheduler(sessionRepo, lockMgr, publisher, cfg))
	serverApp.Run()
}
