package email

import (
	"context"
	"fmt"

	"github.com/quantumair/qbooking/internal/kafka"
)

// Sender delivers ticket confirmations for committed bookings. The
// transport is a stub; the worker wires it to the notifications topic.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send ticket confirmation %s to %s: flight %d seat %s\n", event.Reference, event.PassengerName, event.FlightID, event.Seat)
	return nil
}
