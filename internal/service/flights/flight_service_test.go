package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantumair/qbooking/internal/domain"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetState(ctx context.Context, flightID int64, row, column string) (*domain.Seat, error) {
	args := m.Called(ctx, flightID, row, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetSeatMap(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockCache) SetSeatMap(ctx context.Context, flightID int64, seats []domain.Seat) error {
	args := m.Called(ctx, flightID, seats)
	return args.Error(0)
}

func sampleFlights() []domain.Flight {
	return []domain.Flight{
		{ID: 1, FlightNumber: "QA101", Origin: "SFO", Destination: "JFK"},
		{ID: 2, FlightNumber: "QA202", Origin: "JFK", Destination: "LHR"},
	}
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}
	mockSeatRepo := &MockSeatRepository{}
	mockCache := &MockCache{}

	service := NewFlightService(mockFlightRepo, mockSeatRepo, mockCache, time.Minute)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return([]domain.Flight(nil), nil).Once()
	mockFlightRepo.On("List", ctx).Return(sampleFlights(), nil).Once()
	mockCache.On("SetFlights", ctx, sampleFlights()).Return(nil).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, flights, 2)
	mockCache.AssertExpectations(t)
	mockFlightRepo.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}
	mockCache := &MockCache{}

	service := NewFlightService(mockFlightRepo, &MockSeatRepository{}, mockCache, time.Minute)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(sampleFlights(), nil).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, flights, 2)
	mockFlightRepo.AssertNotCalled(t, "List")
}

func TestFlightService_List_CacheErrorFallsThrough(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}
	mockCache := &MockCache{}

	service := NewFlightService(mockFlightRepo, &MockSeatRepository{}, mockCache, time.Minute)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return([]domain.Flight(nil), errors.New("redis down")).Once()
	mockFlightRepo.On("List", ctx).Return(sampleFlights(), nil).Once()
	mockCache.On("SetFlights", ctx, sampleFlights()).Return(errors.New("redis down")).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, flights, 2)
}

func TestFlightService_List_NoCache(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}

	service := NewFlightService(mockFlightRepo, &MockSeatRepository{}, nil, time.Minute)
	ctx := context.Background()

	mockFlightRepo.On("List", ctx).Return(sampleFlights(), nil).Once()

	flights, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Len(t, flights, 2)
}

func TestFlightService_GetByID(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}

	service := NewFlightService(mockFlightRepo, &MockSeatRepository{}, nil, time.Minute)
	ctx := context.Background()

	expected := &domain.Flight{ID: 1, FlightNumber: "QA101"}
	mockFlightRepo.On("GetByID", ctx, int64(1)).Return(expected, nil).Once()

	flight, err := service.GetByID(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, expected, flight)
}

func TestFlightService_GetByID_InvalidID(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, &MockSeatRepository{}, nil, time.Minute)

	flight, err := service.GetByID(context.Background(), 0)

	assert.Nil(t, flight)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFlightService_SeatMap(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}
	mockSeatRepo := &MockSeatRepository{}

	service := NewFlightService(mockFlightRepo, mockSeatRepo, nil, time.Minute)
	ctx := context.Background()

	seats := []domain.Seat{
		{ID: 1, FlightID: 1, Row: "1", Column: "A", Class: domain.SeatClassBusiness, IsBooked: true},
		{ID: 2, FlightID: 1, Row: "1", Column: "B", Class: domain.SeatClassBusiness},
		{ID: 3, FlightID: 1, Row: "12", Column: "C", Class: domain.SeatClassEconomy},
	}
	mockFlightRepo.On("GetByID", ctx, int64(1)).Return(&domain.Flight{ID: 1}, nil).Once()
	mockSeatRepo.On("ListByFlight", ctx, int64(1)).Return(seats, nil).Once()

	seatMap, err := service.SeatMap(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), seatMap.FlightID)
	assert.Equal(t, 3, seatMap.Total)
	assert.Equal(t, 2, seatMap.Available)
	assert.Equal(t, "1A", seatMap.Seats[0].Label)
	assert.True(t, seatMap.Seats[0].IsBooked)
	assert.Equal(t, "12C", seatMap.Seats[2].Label)
}

func TestFlightService_SeatMap_FlightNotFound(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}
	mockSeatRepo := &MockSeatRepository{}

	service := NewFlightService(mockFlightRepo, mockSeatRepo, nil, time.Minute)
	ctx := context.Background()

	mockFlightRepo.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrFlightNotFound).Once()

	seatMap, err := service.SeatMap(ctx, 99)

	assert.Nil(t, seatMap)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	mockSeatRepo.AssertNotCalled(t, "ListByFlight")
}

func TestFlightService_SeatState(t *testing.T) {
	mockSeatRepo := &MockSeatRepository{}

	service := NewFlightService(&MockFlightRepository{}, mockSeatRepo, nil, time.Minute)
	ctx := context.Background()

	seat := &domain.Seat{ID: 3, FlightID: 1, Row: "12", Column: "C", Class: domain.SeatClassEconomy, IsBooked: true}
	mockSeatRepo.On("GetState", ctx, int64(1), "12", "C").Return(seat, nil).Once()

	entry, err := service.SeatState(ctx, 1, "12", "C")

	require.NoError(t, err)
	assert.Equal(t, "12C", entry.Label)
	assert.True(t, entry.IsBooked)
}

func TestFlightService_SeatState_Validation(t *testing.T) {
	service := NewFlightService(&MockFlightRepository{}, &MockSeatRepository{}, nil, time.Minute)
	ctx := context.Background()

	for _, args := range [][3]interface{}{
		{int64(0), "12", "C"},
		{int64(1), "", "C"},
		{int64(1), "12", ""},
	} {
		entry, err := service.SeatState(ctx, args[0].(int64), args[1].(string), args[2].(string))
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestFlightService_SeatMap_CacheHit(t *testing.T) {
	mockFlightRepo := &MockFlightRepository{}
	mockSeatRepo := &MockSeatRepository{}
	mockCache := &MockCache{}

	service := NewFlightService(mockFlightRepo, mockSeatRepo, mockCache, time.Minute)
	ctx := context.Background()

	seats := []domain.Seat{{ID: 1, FlightID: 1, Row: "1", Column: "A"}}
	mockFlightRepo.On("GetByID", ctx, int64(1)).Return(&domain.Flight{ID: 1}, nil).Once()
	mockCache.On("GetSeatMap", ctx, int64(1)).Return(seats, nil).Once()

	seatMap, err := service.SeatMap(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, seatMap.Total)
	mockSeatRepo.AssertNotCalled(t, "ListByFlight")
}
