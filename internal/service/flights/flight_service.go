package flights

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/quantumair/qbooking/internal/domain"
	"github.com/quantumair/qbooking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SeatMap(ctx context.Context, flightID int64) (*SeatMap, error)
	SeatState(ctx context.Context, flightID int64, row, column string) (*SeatMapEntry, error)
}

// Cache is the read-side cache. A nil slice from a getter means miss.
type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetSeatMap(ctx context.Context, flightID int64) ([]domain.Seat, error)
	SetSeatMap(ctx context.Context, flightID int64, seats []domain.Seat) error
}

type SeatMapEntry struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Row      string `json:"row"`
	Column   string `json:"column"`
	Class    string `json:"class"`
	IsBooked bool   `json:"is_booked"`
}

type SeatMap struct {
	FlightID  int64          `json:"flight_id"`
	Total     int            `json:"total"`
	Available int            `json:"available"`
	Seats     []SeatMapEntry `json:"seats"`
}

// FlightService serves read-side flight data. The Redis cache is an
// optimization only: any cache error falls through to Postgres.
type FlightService struct {
	flights repository.FlightRepository
	seats   repository.SeatRepository

	cache    Cache
	cacheTTL time.Duration
}

func NewFlightService(flights repository.FlightRepository, seats repository.SeatRepository, cache Cache, cacheTTL time.Duration) *FlightService {
	return &FlightService{
		flights:  flights,
		seats:    seats,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list flights: %v", domain.ErrStorageFailure, err)
	}

	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			log.Printf("WARNING: failed to cache flights: %v", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: flight id must be positive", domain.ErrValidation)
	}
	return s.flights.GetByID(ctx, id)
}

func (s *FlightService) SeatMap(ctx context.Context, flightID int64) (*SeatMap, error) {
	if _, err := s.GetByID(ctx, flightID); err != nil {
		return nil, err
	}

	var seats []domain.Seat
	if s.cache != nil {
		if cached, err := s.cache.GetSeatMap(ctx, flightID); err == nil && cached != nil {
			seats = cached
		}
	}
	if seats == nil {
		var err error
		seats, err = s.seats.ListByFlight(ctx, flightID)
		if err != nil {
			return nil, fmt.Errorf("%w: list seats: %v", domain.ErrStorageFailure, err)
		}
		if s.cache != nil {
			if err := s.cache.SetSeatMap(ctx, flightID, seats); err != nil {
				log.Printf("WARNING: failed to cache seat map for flight %d: %v", flightID, err)
			}
		}
	}

	result := &SeatMap{
		FlightID: flightID,
		Total:    len(seats),
		Seats:    make([]SeatMapEntry, 0, len(seats)),
	}
	for _, seat := range seats {
		if !seat.IsBooked {
			result.Available++
		}
		result.Seats = append(result.Seats, SeatMapEntry{
			ID:       seat.ID,
			Label:    seat.Label(),
			Row:      seat.Row,
			Column:   seat.Column,
			Class:    string(seat.Class),
			IsBooked: seat.IsBooked,
		})
	}
	return result, nil
}

// SeatState reads one seat directly from Postgres, bypassing the
// cache. Callers use it to confirm a seat's booked flag after an
// aborted booking attempt.
func (s *FlightService) SeatState(ctx context.Context, flightID int64, row, column string) (*SeatMapEntry, error) {
	if flightID <= 0 {
		return nil, fmt.Errorf("%w: flight id must be positive", domain.ErrValidation)
	}
	if row == "" || column == "" {
		return nil, fmt.Errorf("%w: row and column are required", domain.ErrValidation)
	}

	seat, err := s.seats.GetState(ctx, flightID, row, column)
	if err != nil {
		return nil, err
	}
	return &SeatMapEntry{
		ID:       seat.ID,
		Label:    seat.Label(),
		Row:      seat.Row,
		Column:   seat.Column,
		Class:    string(seat.Class),
		IsBooked: seat.IsBooked,
	}, nil
}

var _ FlightUseCase = (*FlightService)(nil)
