package domain

import "time"

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
	SeatClassFirst    SeatClass = "first"
)

// Seat is one bookable seat on a flight. (FlightID, Row, Column) is
// unique; IsBooked flips to true exactly once, inside the booking
// transaction, and is never reverted by committed state.
type Seat struct {
	ID        int64
	FlightID  int64
	Row       string
	Column    string
	Class     SeatClass
	IsBooked  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label is the passenger-facing seat name, e.g. "5A".
func (s Seat) Label() string {
	return s.Row + s.Column
}
