// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"booking-core/cmd"
	"booking-core/internal/cache"
	"booking-core/internal/client"
	"booking-core/internal/data/repository"
	"booking-core/internal/event"
	"booking-core/internal/wire"
	"booking-core/internal/worker"
	"booking-core/pkg/database"
	"booking-core/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Downstream service clients
	schedules := client.NewScheduleClient(config.Services.ScheduleURL, config.Services.CallTimeout, logger)
	reservations := client.NewReservationClient(config.Services.ReservationURL, config.Services.CallTimeout, logger)

	// Schedule cache and event producer
	redisCache := cache.NewRedisCache(config.Redis, config.Booking.ScheduleCacheTTL, logger)
	defer redisCache.Close()

	producer := event.NewProducer(config.Kafka.Brokers, config.Kafka.EventsTopic, logger)
	defer producer.Close()

	// Wire all dependencies
	app := wire.Wiring(repos, config, schedules, reservations, redisCache, producer, logger)

	// Background reaper sweeps expired holds back to available
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reaper := worker.NewReaper(app.Service.Inventory, producer, config.Booking.ReaperInterval, logger)
	go reaper.Run(ctx)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
