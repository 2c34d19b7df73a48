package domain

import "time"

type CheckInStatus string

const (
	CheckInStatusNone         CheckInStatus = "none"
	CheckInStatusWebChecked   CheckInStatus = "web_checked"
	CheckInStatusAgentChecked CheckInStatus = "agent_checked"
)

// Order is the view owned by the passenger-record service; the saga reads it
// over the bus and never writes it back directly.
type Order struct {
	ID              string          `json:"id"`
	PNR             string          `json:"pnr"`
	Segments        []FlightSegment `json:"segments"`
	Passengers      []Passenger     `json:"passengers"`
	LuggageWeightKg float64         `json:"luggage_weight_kg"`
	PaidCheckin     bool            `json:"paid_checkin"`
}

type FlightSegment struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	FromAirport   string    `json:"from_airport"`
	ToAirport     string    `json:"to_airport"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

type Passenger struct {
	ID             string        `json:"id"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	DocumentNumber string        `json:"document_number"`
	SeatNumber     string        `json:"seat_number"`
	CheckInStatus  CheckInStatus `json:"check_in_status"`
}

// DepartureLeg returns the flight leg seats are claimed against.
func (o *Order) DepartureLeg() (FlightSegment, bool) {
	if len(o.Segments) == 0 {
		return FlightSegment{}, false
	}
	return o.Segments[0], true
}
