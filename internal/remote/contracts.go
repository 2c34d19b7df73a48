package remote

import "time"

// Request kinds routed by the rpc server. Collaborator services own the
// session/auth/orders/baggage kinds; this repo serves the rest.
const (
	KindValidateSession = "session.validate"
	KindAuthenticate    = "auth.authenticate"
	KindSearchOrder     = "orders.search"
	KindBaggageWeight   = "baggage.total_weight"
	KindReserveSeat     = "registration.reserve"
	KindRegisterFree    = "registration.register_free"
	KindRegisterPaid    = "registration.register_paid"
	KindCheckIn         = "checkin.request"
	KindReservationGet  = "registration.reservation"
	KindReservationList = "registration.reservations"
)

type ValidateSessionRequest struct {
	Token string `json:"token"`
}

type ValidateSessionReply struct {
	Valid bool `json:"valid"`
}

type AuthenticateRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthenticateReply struct {
	EphemeralID string `json:"ephemeral_id"`
}

type SearchOrderRequest struct {
	SessionToken string `json:"session_token"`
	PNR          string `json:"pnr"`
	LastName     string `json:"last_name"`
}

type BaggageWeightRequest struct {
	OrderID     string `json:"order_id"`
	PassengerID string `json:"passenger_id"`
}

type BaggageWeightReply struct {
	TotalWeightKg float64 `json:"total_weight_kg"`
}

type ReserveSeatRequest struct {
	SessionToken string `json:"session_token"`
	FlightLegID  string `json:"flight_leg_id"`
	PassengerID  string `json:"passenger_id"`
	SeatNumber   string `json:"seat_number"`
}

type ReserveSeatReply struct {
	FlightLegID string    `json:"flight_leg_id"`
	SeatNumber  string    `json:"seat_number"`
	PassengerID string    `json:"passenger_id"`
	ReservedAt  time.Time `json:"reserved_at"`
}

type RegisterRequest struct {
	SessionToken string `json:"session_token"`
	FlightLegID  string `json:"flight_leg_id"`
	PassengerID  string `json:"passenger_id"`
	SeatNumber   string `json:"seat_number"`
}

type RegisterReply struct {
	IsPaid       bool      `json:"is_paid"`
	SeatNumber   string    `json:"seat_number"`
	RegisteredAt time.Time `json:"registered_at"`
}

type ReservationGetRequest struct {
	FlightLegID string `json:"flight_leg_id"`
	SeatNumber  string `json:"seat_number"`
}

type ReservationListRequest struct {
	FlightLegID string `json:"flight_leg_id"`
}

type ReservationListReply struct {
	Reservations []ReserveSeatReply `json:"reservations"`
}
