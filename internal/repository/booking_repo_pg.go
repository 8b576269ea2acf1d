package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantumair/qbooking/internal/domain"
)

// BuildBookingFunc assembles the booking row for a locked, unbooked
// seat. It runs inside the transaction while the exclusive row lock is
// held; returning an error aborts the transaction with no mutation.
type BuildBookingFunc func(seat *domain.Seat) (*domain.Booking, error)

type BookingRepository interface {
	// CreateBooked runs the whole booking transaction: lock the seat
	// row, invoke build under the lock, flip is_booked and insert the
	// booking, then commit. At most one caller per seat can ever
	// succeed; the rest observe ErrSeatAlreadyBooked.
	CreateBooked(ctx context.Context, flightID int64, row, column string, build BuildBookingFunc) (*domain.Booking, error)
	GetTicketByReference(ctx context.Context, reference string) (*domain.Ticket, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) CreateBooked(ctx context.Context, flightID int64, row, column string, build BuildBookingFunc) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", domain.ErrStorageFailure, err)
	}
	defer tx.Rollback(ctx)

	// SELECT ... FOR UPDATE blocks concurrent bookers of the same seat
	// until this transaction commits or rolls back.
	var seat domain.Seat
	err = tx.QueryRow(ctx, `SELECT id, flight_id, row_num, col_num, class, is_booked FROM seats WHERE flight_id=$1 AND row_num=$2 AND col_num=$3 FOR UPDATE`, flightID, row, column).
		Scan(&seat.ID, &seat.FlightID, &seat.Row, &seat.Column, &seat.Class, &seat.IsBooked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: seat %s%s on flight %d", domain.ErrSeatNotFound, row, column, flightID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lock seat: %v", domain.ErrStorageFailure, err)
	}
	if seat.IsBooked {
		return nil, fmt.Errorf("%w: seat %s%s on flight %d", domain.ErrSeatAlreadyBooked, row, column, flightID)
	}

	booking, err := build(&seat)
	if err != nil {
		return nil, err
	}
	booking.SeatID = seat.ID
	booking.FlightID = seat.FlightID

	if _, err := tx.Exec(ctx, `UPDATE seats SET is_booked = TRUE, updated_at = now() WHERE id=$1`, seat.ID); err != nil {
		return nil, fmt.Errorf("%w: mark seat booked: %v", domain.ErrStorageFailure, err)
	}

	err = tx.QueryRow(ctx, `INSERT INTO bookings (seat_id, flight_id, reference, passenger_name, kem_capsule, identity_enc, encryption_nonce, signature, sig_public_key, ticket_data_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		booking.SeatID, booking.FlightID, booking.Reference, booking.PassengerName, booking.Capsule, booking.EncryptedDoc, booking.Nonce, booking.Signature, booking.SigPublicKey, booking.DataHash).
		Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert booking: %v", domain.ErrStorageFailure, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", domain.ErrStorageFailure, err)
	}
	return booking, nil
}

func (r *PGBookingRepository) GetTicketByReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	row := r.db.QueryRow(ctx, `SELECT b.id, b.seat_id, b.flight_id, b.reference, b.passenger_name, b.kem_capsule, b.identity_enc, b.encryption_nonce, b.signature, b.sig_public_key, b.ticket_data_hash, b.created_at,
			f.flight_number, f.origin, f.destination, f.departure_time,
			s.row_num, s.col_num, s.class
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		JOIN seats s ON s.id = b.seat_id
		WHERE b.reference = $1`, reference)

	var t domain.Ticket
	err := row.Scan(&t.ID, &t.SeatID, &t.FlightID, &t.Reference, &t.PassengerName, &t.Capsule, &t.EncryptedDoc, &t.Nonce, &t.Signature, &t.SigPublicKey, &t.DataHash, &t.CreatedAt,
		&t.FlightNumber, &t.Origin, &t.Destination, &t.Departure,
		&t.SeatRow, &t.SeatColumn, &t.SeatClass)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reference %s", domain.ErrBookingNotFound, reference)
		}
		return nil, err
	}
	return &t, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
