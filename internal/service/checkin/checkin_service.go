package checkin

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/domain"
)

type CheckInRequest struct {
	SessionToken string `json:"session_token"`
	PNR          string `json:"pnr"`
	LastName     string `json:"last_name"`
	PaidSeat     bool   `json:"paid_seat"`
}

// CheckInResponse carries an order view with exactly the one passenger that
// was matched and checked in.
type CheckInResponse struct {
	Order domain.Order `json:"order"`
}

type CheckInUseCase interface {
	CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResponse, error)
}

type SessionValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (string, error)
}

type OrderSearcher interface {
	Search(ctx context.Context, sessionToken, pnr, lastName string) (*domain.Order, error)
}

type Registrar interface {
	Reserve(ctx context.Context, sessionToken, flightLegID, passengerID, seatNumber string) (*domain.SeatReservation, error)
	Register(ctx context.Context, kind domain.RegistrationKind, sessionToken, flightLegID, passengerID, seatNumber string) (*domain.RegistrationRecord, error)
}

type BaggageAggregator interface {
	TotalWeight(ctx context.Context, orderID, passengerID string) (float64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Service runs the check-in saga: validate session, authenticate, find the
// order and passenger, reserve the seat, register, publish the status event,
// fold in the baggage total. Steps are strictly sequential and any failure is
// fatal to the run; already-applied steps are not compensated, they are
// idempotent so the whole saga can simply be re-run.
type Service struct {
	sessions    SessionValidator
	auth        Authenticator
	orders      OrderSearcher
	registrar   Registrar
	baggage     BaggageAggregator
	producer    Producer
	statusTopic string
	login       string
	password    string
}

func NewService(
	sessions SessionValidator,
	auth Authenticator,
	orders OrderSearcher,
	registrar Registrar,
	baggage BaggageAggregator,
	producer Producer,
	statusTopic string,
	login, password string,
) *Service {
	return &Service{
		sessions:    sessions,
		auth:        auth,
		orders:      orders,
		registrar:   registrar,
		baggage:     baggage,
		producer:    producer,
		statusTopic: statusTopic,
		login:       login,
		password:    password,
	}
}

func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResponse, error) {
	valid, err := s.sessions.Validate(ctx, req.SessionToken)
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	if !valid {
		return nil, domain.ErrSessionInvalid
	}

	// Workflow-held credentials, not the end user's. The ephemeral id is not
	// used downstream; only the validated session token flows on.
	if _, err := s.auth.Authenticate(ctx, s.login, s.password); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	order, err := s.orders.Search(ctx, req.SessionToken, req.PNR, req.LastName)
	if err != nil {
		return nil, fmt.Errorf("search order: %w", err)
	}

	passenger, ok := matchPassenger(order.Passengers, req.LastName)
	if !ok {
		return nil, domain.ErrPassengerNotFound
	}

	leg, ok := order.DepartureLeg()
	if !ok {
		return nil, fmt.Errorf("order %s has no flight segments", order.ID)
	}

	seat, err := s.registrar.Reserve(ctx, req.SessionToken, leg.ID, passenger.ID, passenger.SeatNumber)
	if err != nil {
		return nil, fmt.Errorf("reserve seat: %w", err)
	}

	kind := domain.RegistrationFree
	if req.PaidSeat {
		kind = domain.RegistrationPaid
	}
	rec, err := s.registrar.Register(ctx, kind, req.SessionToken, leg.ID, passenger.ID, seat.SeatNumber)
	if err != nil {
		return nil, fmt.Errorf("register passenger: %w", err)
	}

	passenger.CheckInStatus = kind.Status()
	passenger.SeatNumber = rec.SeatNumber

	// Fire-and-forget: the passenger-record service persists the new status
	// from this event, no acknowledgement is awaited.
	event := bus.PassengerStatusChanged{
		PassengerID: passenger.ID,
		NewStatus:   string(passenger.CheckInStatus),
	}
	if err := s.producer.Publish(ctx, s.statusTopic, passenger.ID, event); err != nil {
		log.Printf("WARNING: failed to publish status change for passenger %s: %v", passenger.ID, err)
	}

	total, err := s.baggage.TotalWeight(ctx, order.ID, passenger.ID)
	if err != nil {
		return nil, fmt.Errorf("aggregate baggage weight: %w", err)
	}

	view := *order
	view.Passengers = []domain.Passenger{passenger}
	if total > 0 {
		view.LuggageWeightKg = total
	}
	return &CheckInResponse{Order: view}, nil
}

// matchPassenger picks the first case-insensitive last-name match in the list
// order the order service returned it. When several passengers share a last
// name the pick is as arbitrary as that ordering.
func matchPassenger(passengers []domain.Passenger, lastName string) (domain.Passenger, bool) {
	for _, p := range passengers {
		if strings.EqualFold(p.LastName, lastName) {
			return p, true
		}
	}
	return domain.Passenger{}, false
}

var _ CheckInUseCase = (*Service)(nil)
