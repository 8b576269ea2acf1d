package booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/quantumair/qbooking/internal/domain"
	"github.com/quantumair/qbooking/internal/kafka"
	"github.com/quantumair/qbooking/internal/quantum"
	"github.com/quantumair/qbooking/internal/repository"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*Confirmation, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

type Cache interface {
	AcquireSeatHold(ctx context.Context, flightID int64, row, column string, ttl time.Duration) (string, bool, error)
	ReleaseSeatHold(ctx context.Context, flightID int64, row, column, token string) error
	InvalidateSeatMap(ctx context.Context, flightID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Entropy interface {
	GenerateReference(length int) (string, error)
	Algorithm() string
}

type Encrypter interface {
	Encrypt(plaintext []byte) (*quantum.EncryptResult, error)
	Algorithm() string
}

type Signer interface {
	Sign(message []byte) (*quantum.SignResult, error)
	Verify(message, signature, publicKey []byte) bool
	Algorithm() string
}

// BookingService is the booking orchestrator: one Postgres transaction
// per attempt, with the seat row locked exclusively across the three
// cryptographic calls. The wide critical section keeps reference
// generation and the seat flip atomic; its latency bounds throughput
// on a contended seat.
type BookingService struct {
	bookings repository.BookingRepository
	flights  repository.FlightRepository

	entropy   Entropy
	encrypter Encrypter
	signer    Signer
	caps      quantum.Capabilities

	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string

	refLength int
	holdTTL   time.Duration
}

type BookInput struct {
	FlightID         int64  `json:"flight_id"`
	Row              string `json:"row"`
	Column           string `json:"column"`
	PassengerName    string `json:"passenger_name"`
	IdentityDocument string `json:"identity_document"`
}

type FlightSummary struct {
	Number      string    `json:"number"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   time.Time `json:"departure"`
}

type SeatSummary struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Class string `json:"class"`
}

// DemoKeys carries hex private key material. Populated only in demo
// mode; a production posture never returns it.
type DemoKeys struct {
	KEMPrivateKey       string `json:"kem_private_key"`
	SignaturePrivateKey string `json:"signature_private_key"`
}

type CryptoMetadata struct {
	Entropy          string    `json:"entropy_algorithm"`
	Encryption       string    `json:"encryption_algorithm"`
	Signature        string    `json:"signature_algorithm"`
	Simulated        bool      `json:"simulated"`
	TicketDataHash   string    `json:"ticket_data_hash"`
	SignaturePreview string    `json:"signature_preview"`
	CapsulePreview   string    `json:"capsule_preview"`
	DemoKeys         *DemoKeys `json:"demo_keys,omitempty"`
}

type Confirmation struct {
	BookingID     int64          `json:"booking_id"`
	Reference     string         `json:"reference"`
	PassengerName string         `json:"passenger_name"`
	Flight        FlightSummary  `json:"flight"`
	Seat          SeatSummary    `json:"seat"`
	Crypto        CryptoMetadata `json:"crypto"`
}

type TicketSummary struct {
	Reference     string    `json:"reference"`
	FlightNumber  string    `json:"flight_number"`
	Route         string    `json:"route"`
	PassengerName string    `json:"passenger"`
	Seat          string    `json:"seat"`
	Departure     time.Time `json:"departure"`
}

type VerifyResult struct {
	Verified bool           `json:"verified"`
	Ticket   *TicketSummary `json:"ticket,omitempty"`
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	entropy Entropy,
	encrypter Encrypter,
	signer Signer,
	caps quantum.Capabilities,
	refLength int,
	holdTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	if refLength <= 0 {
		refLength = quantum.DefaultReferenceLength
	}
	service := &BookingService{
		bookings:  bookings,
		flights:   flights,
		entropy:   entropy,
		encrypter: encrypter,
		signer:    signer,
		caps:      caps,
		refLength: refLength,
		holdTTL:   holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves one seat and binds it to an authenticated ticket
// record. Exactly one of N concurrent attempts on the same seat
// succeeds; every failure path rolls the transaction back with the
// seat untouched.
func (s *BookingService) Book(ctx context.Context, input BookInput) (*Confirmation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	row := strings.TrimSpace(input.Row)
	column := strings.ToUpper(strings.TrimSpace(input.Column))
	name := strings.TrimSpace(input.PassengerName)

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		if errors.Is(err, domain.ErrFlightNotFound) {
			return nil, fmt.Errorf("%w: flight %d", domain.ErrSeatNotFound, input.FlightID)
		}
		return nil, fmt.Errorf("%w: load flight: %v", domain.ErrStorageFailure, err)
	}

	if s.cache != nil {
		token, ok, err := s.cache.AcquireSeatHold(ctx, input.FlightID, row, column, s.holdTTL)
		if err == nil && !ok {
			return nil, fmt.Errorf("%w: seat %s%s on flight %d", domain.ErrSeatAlreadyBooked, row, column, input.FlightID)
		}
		if err == nil {
			defer func() {
				_ = s.cache.ReleaseSeatHold(ctx, input.FlightID, row, column, token)
			}()
		}
		// A hold error is ignored: the row lock alone guarantees a
		// single winner.
	}

	var (
		seat domain.Seat
		enc  *quantum.EncryptResult
		sig  *quantum.SignResult
	)
	booking, err := s.bookings.CreateBooked(ctx, input.FlightID, row, column, func(locked *domain.Seat) (*domain.Booking, error) {
		// The exclusive seat lock is held for this entire sequence.
		seat = *locked

		reference, err := s.entropy.GenerateReference(s.refLength)
		if err != nil {
			return nil, err
		}
		enc, err = s.encrypter.Encrypt([]byte(strings.TrimSpace(input.IdentityDocument)))
		if err != nil {
			return nil, err
		}
		sig, err = s.signer.Sign(canonicalTicket(reference, locked.ID, locked.FlightID, name))
		if err != nil {
			return nil, err
		}

		return &domain.Booking{
			Reference:     reference,
			PassengerName: name,
			Capsule:       enc.Encapsulation,
			EncryptedDoc:  enc.Ciphertext,
			Nonce:         enc.Nonce,
			Signature:     sig.Signature,
			SigPublicKey:  sig.PublicKey,
			DataHash:      sig.Digest,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateSeatMap(ctx, input.FlightID)
	}

	conf := &Confirmation{
		BookingID:     booking.ID,
		Reference:     booking.Reference,
		PassengerName: booking.PassengerName,
		Flight: FlightSummary{
			Number:      flight.FlightNumber,
			Origin:      flight.Origin,
			Destination: flight.Destination,
			Departure:   flight.DepartureTime,
		},
		Seat: SeatSummary{
			ID:    seat.ID,
			Label: seat.Label(),
			Class: string(seat.Class),
		},
		Crypto: CryptoMetadata{
			Entropy:          s.entropy.Algorithm(),
			Encryption:       enc.Algorithm,
			Signature:        sig.Algorithm,
			Simulated:        enc.Simulated || sig.Simulated,
			TicketDataHash:   booking.DataHash,
			SignaturePreview: preview(booking.Signature),
			CapsulePreview:   preview(booking.Capsule),
		},
	}
	if s.caps.DemoMode {
		conf.Crypto.DemoKeys = &DemoKeys{
			KEMPrivateKey:       hex.EncodeToString(enc.PrivateKey),
			SignaturePrivateKey: hex.EncodeToString(sig.PrivateKey),
		}
	}

	s.publish(ctx, "booking_confirmed", booking, conf)
	return conf, nil
}

// Verify checks the authenticity tag of a stored ticket. An unknown
// reference is a negative result, not an error.
func (s *BookingService) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	ref := strings.ToUpper(strings.TrimSpace(reference))
	if ref == "" {
		return nil, fmt.Errorf("%w: reference is required", domain.ErrValidation)
	}

	ticket, err := s.bookings.GetTicketByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return &VerifyResult{Verified: false}, nil
		}
		return nil, fmt.Errorf("%w: load ticket: %v", domain.ErrStorageFailure, err)
	}

	message := canonicalTicket(ticket.Reference, ticket.SeatID, ticket.FlightID, ticket.PassengerName)
	digest := sha256.Sum256(message)
	if hex.EncodeToString(digest[:]) != ticket.DataHash {
		return &VerifyResult{Verified: false}, nil
	}
	if !s.signer.Verify(message, ticket.Signature, ticket.SigPublicKey) {
		return &VerifyResult{Verified: false}, nil
	}

	return &VerifyResult{
		Verified: true,
		Ticket: &TicketSummary{
			Reference:     ticket.Reference,
			FlightNumber:  ticket.FlightNumber,
			Route:         fmt.Sprintf("%s -> %s", ticket.Origin, ticket.Destination),
			PassengerName: ticket.PassengerName,
			Seat:          fmt.Sprintf("%s (%s)", ticket.SeatLabel(), ticket.SeatClass),
			Departure:     ticket.Departure,
		},
	}, nil
}

func (input BookInput) validate() error {
	switch {
	case input.FlightID <= 0:
		return fmt.Errorf("%w: flight_id must be positive", domain.ErrValidation)
	case strings.TrimSpace(input.Row) == "":
		return fmt.Errorf("%w: row is required", domain.ErrValidation)
	case strings.TrimSpace(input.Column) == "":
		return fmt.Errorf("%w: column is required", domain.ErrValidation)
	case strings.TrimSpace(input.PassengerName) == "":
		return fmt.Errorf("%w: passenger_name is required", domain.ErrValidation)
	case strings.TrimSpace(input.IdentityDocument) == "":
		return fmt.Errorf("%w: identity_document is required", domain.ErrValidation)
	}
	return nil
}

// canonicalTicket is the byte string the ticket signature covers. The
// field order is part of the stored signature format; do not reorder.
func canonicalTicket(reference string, seatID, flightID int64, passengerName string) []byte {
	return []byte(fmt.Sprintf("%s|%d|%d|%s", reference, seatID, flightID, passengerName))
}

func preview(data []byte) string {
	const n = 32
	if len(data) <= n {
		return hex.EncodeToString(data)
	}
	return hex.EncodeToString(data[:n]) + "..."
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, conf *Confirmation) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		Reference:     booking.Reference,
		FlightID:      booking.FlightID,
		Seat:          conf.Seat.Label,
		PassengerName: booking.PassengerName,
		Algorithm:     conf.Crypto.Signature,
		CreatedAt:     booking.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.Reference, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			log.Printf("WARNING: failed to publish notification for booking %s: %v", booking.Reference, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
