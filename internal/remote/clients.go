package remote

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/Domenick1991/checkin/internal/service/checkin"
)

// Caller is the request/response surface of the bus rpc client.
type Caller interface {
	Call(ctx context.Context, topic, kind string, payload interface{}, timeout time.Duration) (json.RawMessage, error)
}

type SessionClient struct {
	caller  Caller
	topic   string
	timeout time.Duration
}

func NewSessionClient(caller Caller, topic string, timeout time.Duration) *SessionClient {
	return &SessionClient{caller: caller, topic: topic, timeout: timeout}
}

func (c *SessionClient) Validate(ctx context.Context, token string) (bool, error) {
	data, err := c.caller.Call(ctx, c.topic, KindValidateSession, ValidateSessionRequest{Token: token}, c.timeout)
	if err != nil {
		return false, err
	}
	var reply ValidateSessionReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return false, err
	}
	return reply.Valid, nil
}

type AuthClient struct {
	caller  Caller
	topic   string
	timeout time.Duration
}

func NewAuthClient(caller Caller, topic string, timeout time.Duration) *AuthClient {
	return &AuthClient{caller: caller, topic: topic, timeout: timeout}
}

func (c *AuthClient) Authenticate(ctx context.Context, login, password string) (string, error) {
	data, err := c.caller.Call(ctx, c.topic, KindAuthenticate, AuthenticateRequest{Login: login, Password: password}, c.timeout)
	if err != nil {
		return "", err
	}
	var reply AuthenticateReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return "", err
	}
	return reply.EphemeralID, nil
}

type OrderClient struct {
	caller  Caller
	topic   string
	timeout time.Duration
}

func NewOrderClient(caller Caller, topic string, timeout time.Duration) *OrderClient {
	return &OrderClient{caller: caller, topic: topic, timeout: timeout}
}

func (c *OrderClient) Search(ctx context.Context, sessionToken, pnr, lastName string) (*domain.Order, error) {
	data, err := c.caller.Call(ctx, c.topic, KindSearchOrder, SearchOrderRequest{
		SessionToken: sessionToken,
		PNR:          pnr,
		LastName:     lastName,
	}, c.timeout)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type BaggageClient struct {
	caller  Caller
	topic   string
	timeout time.Duration
}

func NewBaggageClient(caller Caller, topic string, timeout time.Duration) *BaggageClient {
	return &BaggageClient{caller: caller, topic: topic, timeout: timeout}
}

func (c *BaggageClient) TotalWeight(ctx context.Context, orderID, passengerID string) (float64, error) {
	data, err := c.caller.Call(ctx, c.topic, KindBaggageWeight, BaggageWeightRequest{
		OrderID:     orderID,
		PassengerID: passengerID,
	}, c.timeout)
	if err != nil {
		return 0, err
	}
	var reply BaggageWeightReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return 0, err
	}
	return reply.TotalWeightKg, nil
}

// RegistrationClient is the saga's view of the registration service.
type RegistrationClient struct {
	caller  Caller
	topic   string
	timeout time.Duration
}

func NewRegistrationClient(caller Caller, topic string, timeout time.Duration) *RegistrationClient {
	return &RegistrationClient{caller: caller, topic: topic, timeout: timeout}
}

func (c *RegistrationClient) Reserve(ctx context.Context, sessionToken, flightLegID, passengerID, seatNumber string) (*domain.SeatReservation, error) {
	data, err := c.caller.Call(ctx, c.topic, KindReserveSeat, ReserveSeatRequest{
		SessionToken: sessionToken,
		FlightLegID:  flightLegID,
		PassengerID:  passengerID,
		SeatNumber:   seatNumber,
	}, c.timeout)
	if err != nil {
		return nil, err
	}
	var reply ReserveSeatReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &domain.SeatReservation{
		FlightLegID:  reply.FlightLegID,
		SeatNumber:   reply.SeatNumber,
		PassengerID:  reply.PassengerID,
		SessionToken: sessionToken,
		ReservedAt:   reply.ReservedAt,
	}, nil
}

func (c *RegistrationClient) Register(ctx context.Context, kind domain.RegistrationKind, sessionToken, flightLegID, passengerID, seatNumber string) (*domain.RegistrationRecord, error) {
	rpcKind := KindRegisterFree
	if kind.IsPaid() {
		rpcKind = KindRegisterPaid
	}
	data, err := c.caller.Call(ctx, c.topic, rpcKind, RegisterRequest{
		SessionToken: sessionToken,
		FlightLegID:  flightLegID,
		PassengerID:  passengerID,
		SeatNumber:   seatNumber,
	}, c.timeout)
	if err != nil {
		return nil, err
	}
	var reply RegisterReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, err
	}
	return &domain.RegistrationRecord{
		SessionToken: sessionToken,
		FlightLegID:  flightLegID,
		PassengerID:  passengerID,
		SeatNumber:   reply.SeatNumber,
		IsPaid:       reply.IsPaid,
		RegisteredAt: reply.RegisteredAt,
	}, nil
}

// CheckInClient lets the gateway drive the saga over the bus.
type CheckInClient struct {
	caller  Caller
	topic   string
	timeout time.Duration
}

func NewCheckInClient(caller Caller, topic string, timeout time.Duration) *CheckInClient {
	return &CheckInClient{caller: caller, topic: topic, timeout: timeout}
}

func (c *CheckInClient) CheckIn(ctx context.Context, req checkin.CheckInRequest) (*checkin.CheckInResponse, error) {
	data, err := c.caller.Call(ctx, c.topic, KindCheckIn, req, c.timeout)
	if err != nil {
		return nil, err
	}
	var resp checkin.CheckInResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

var (
	_ checkin.SessionValidator  = (*SessionClient)(nil)
	_ checkin.Authenticator     = (*AuthClient)(nil)
	_ checkin.OrderSearcher     = (*OrderClient)(nil)
	_ checkin.BaggageAggregator = (*BaggageClient)(nil)
	_ checkin.Registrar         = (*RegistrationClient)(nil)
)
