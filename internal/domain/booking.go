package domain

import "time"

// Booking binds one seat to one passenger together with the
// cryptographic artifacts produced inside the booking transaction.
// A Booking row exists if and only if its seat is booked.
type Booking struct {
	ID            int64
	SeatID        int64
	FlightID      int64
	Reference     string
	PassengerName string

	// Capsule is the KEM encapsulation needed to recover the symmetric
	// key that protects EncryptedDoc.
	Capsule      []byte
	EncryptedDoc []byte
	Nonce        []byte

	// Signature covers the canonical ticket tuple; SigPublicKey is kept
	// so the ticket stays verifiable after the signing keypair is gone.
	Signature    []byte
	SigPublicKey []byte
	DataHash     string

	CreatedAt time.Time
}

// Ticket is a booking joined with its flight and seat, as needed for
// verification responses.
type Ticket struct {
	Booking

	FlightNumber string
	Origin       string
	Destination  string
	Departure    time.Time
	SeatRow      string
	SeatColumn   string
	SeatClass    SeatClass
}

// SeatLabel is the passenger-facing seat name, e.g. "5A".
func (t Ticket) SeatLabel() string {
	return t.SeatRow + t.SeatColumn
}
