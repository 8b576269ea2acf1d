package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumair/qbooking/internal/domain"
)

type SeatRepository interface {
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error)
	GetState(ctx context.Context, flightID int64, row, column string) (*domain.Seat, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

func (r *PGSeatRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_id, row_num, col_num, class, is_booked, created_at, updated_at FROM seats WHERE flight_id=$1 ORDER BY id`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.FlightID, &s.Row, &s.Column, &s.Class, &s.IsBooked, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// GetState is a plain read of one seat, used by callers that re-check
// seat state after an aborted booking attempt.
func (r *PGSeatRepository) GetState(ctx context.Context, flightID int64, row, column string) (*domain.Seat, error) {
	var s domain.Seat
	err := r.db.QueryRow(ctx, `SELECT id, flight_id, row_num, col_num, class, is_booked, created_at, updated_at FROM seats WHERE flight_id=$1 AND row_num=$2 AND col_num=$3`, flightID, row, column).
		Scan(&s.ID, &s.FlightID, &s.Row, &s.Column, &s.Class, &s.IsBooked, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: seat %s%s on flight %d", domain.ErrSeatNotFound, row, column, flightID)
		}
		return nil, err
	}
	return &s, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
