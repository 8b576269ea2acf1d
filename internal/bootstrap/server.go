package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantumair/qbooking/api"
	"github.com/quantumair/qbooking/config"
	"github.com/quantumair/qbooking/internal/quantum"
	"github.com/quantumair/qbooking/internal/service/booking"
	"github.com/quantumair/qbooking/internal/service/flights"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	caps quantum.Capabilities,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	db, cache api.Pinger,
) error {
	router := NewRouter(caps, flightSvc, bookingSvc, db, cache)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func NewRouter(
	caps quantum.Capabilities,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	db, cache api.Pinger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	root := router.Group("/api")
	api.NewHealthHandler(caps, db, cache).Register(root)
	api.NewFlightHandler(flightSvc).Register(root.Group("/flights"))
	api.NewBookingHandler(bookingSvc).Register(root.Group("/bookings"))

	return router
}
