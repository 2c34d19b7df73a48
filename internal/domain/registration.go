package domain

import "time"

// SeatReservation is one claim on a (flight leg, seat) pair. At most one
// passenger may hold a live claim for a pair; a repeated claim by the same
// passenger returns the existing row.
type SeatReservation struct {
	ID           int64
	FlightLegID  string
	SeatNumber   string
	PassengerID  string
	SessionToken string
	ReservedAt   time.Time
}

// RegistrationRecord is the append-only outcome of a free or paid registration.
type RegistrationRecord struct {
	ID           int64
	SessionToken string
	FlightLegID  string
	PassengerID  string
	SeatNumber   string
	IsPaid       bool
	RegisteredAt time.Time
}

// Payment rows are written by the payment simulator and are read-only here.
type Payment struct {
	ID           int64
	SessionToken string
	PassengerID  string
	FlightLegID  string
	Amount       int64
	IsPaid       bool
	PaidAt       time.Time
}

type RegistrationKind int

const (
	RegistrationFree RegistrationKind = iota
	RegistrationPaid
)

func (k RegistrationKind) IsPaid() bool {
	return k == RegistrationPaid
}

// Status is the check-in status a successful registration of this kind yields.
func (k RegistrationKind) Status() CheckInStatus {
	if k == RegistrationPaid {
		return CheckInStatusAgentChecked
	}
	return CheckInStatusWebChecked
}
