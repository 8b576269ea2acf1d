package domain

import "errors"

// Failure taxonomy for the booking core. Callers match with errors.Is;
// wrapped messages add detail for the conflict and not-found cases,
// while storage and crypto detail stays out of user-facing responses.
var (
	ErrValidation        = errors.New("invalid input")
	ErrFlightNotFound    = errors.New("flight not found")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrSeatAlreadyBooked = errors.New("seat is already booked")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrCryptoFailure     = errors.New("cryptographic operation failed")
	ErrCryptoUnavailable = errors.New("cryptographic backend unavailable")
	ErrIntegrityFailure  = errors.New("integrity check failed")
	ErrStorageFailure    = errors.New("storage transaction failed")
)
