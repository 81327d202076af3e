// internal/wire/wire.go
package wire

import (
	"net/http"

	"booking-core/internal/adaptor"
	"booking-core/internal/client"
	"booking-core/internal/data/repository"
	"booking-core/internal/usecase"
	"booking-core/pkg/middleware"
	"booking-core/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring initializes all dependencies
func Wiring(repo *repository.Repository, config *utils.Config,
	schedules client.ScheduleAPI, reservations client.ReservationAPI,
	cache usecase.ScheduleCache, events usecase.EventPublisher,
	logger *zap.Logger) *App {
	// Initialize services and handlers
	service := usecase.NewService(repo, config, schedules, reservations, cache, events, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter configures the Chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireBooking(r, handler.Booking)
	wireSeat(r, handler.Seat)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
