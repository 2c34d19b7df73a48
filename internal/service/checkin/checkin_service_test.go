package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/checkin/internal/bus"
	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionValidator struct {
	mock.Mock
}

func (m *MockSessionValidator) Validate(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, login, password string) (string, error) {
	args := m.Called(ctx, login, password)
	return args.String(0), args.Error(1)
}

type MockOrderSearcher struct {
	mock.Mock
}

func (m *MockOrderSearcher) Search(ctx context.Context, sessionToken, pnr, lastName string) (*domain.Order, error) {
	args := m.Called(ctx, sessionToken, pnr, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) Reserve(ctx context.Context, sessionToken, flightLegID, passengerID, seatNumber string) (*domain.SeatReservation, error) {
	args := m.Called(ctx, sessionToken, flightLegID, passengerID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatReservation), args.Error(1)
}

func (m *MockRegistrar) Register(ctx context.Context, kind domain.RegistrationKind, sessionToken, flightLegID, passengerID, seatNumber string) (*domain.RegistrationRecord, error) {
	args := m.Called(ctx, kind, sessionToken, flightLegID, passengerID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationRecord), args.Error(1)
}

type MockBaggageAggregator struct {
	mock.Mock
}

func (m *MockBaggageAggregator) TotalWeight(ctx context.Context, orderID, passengerID string) (float64, error) {
	args := m.Called(ctx, orderID, passengerID)
	return args.Get(0).(float64), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type saga struct {
	service   *Service
	sessions  *MockSessionValidator
	auth      *MockAuthenticator
	orders    *MockOrderSearcher
	registrar *MockRegistrar
	baggage   *MockBaggageAggregator
	producer  *MockProducer
}

func newSaga() *saga {
	s := &saga{
		sessions:  &MockSessionValidator{},
		auth:      &MockAuthenticator{},
		orders:    &MockOrderSearcher{},
		registrar: &MockRegistrar{},
		baggage:   &MockBaggageAggregator{},
		producer:  &MockProducer{},
	}
	s.service = NewService(s.sessions, s.auth, s.orders, s.registrar, s.baggage, s.producer,
		"status_topic", "workflow", "secret")
	return s
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:  "order-1",
		PNR: "PNR1",
		Segments: []domain.FlightSegment{
			{ID: "leg-1", FlightNumber: "SU 100", FromAirport: "SVO", ToAirport: "LED"},
		},
		Passengers: []domain.Passenger{
			{ID: "pass-1", FirstName: "Ivan", LastName: "Ivanov", SeatNumber: "1A"},
			{ID: "pass-2", FirstName: "Petr", LastName: "Petrov", SeatNumber: "1B"},
		},
		LuggageWeightKg: 20,
		PaidCheckin:     false,
	}
}

func TestCheckInService_CheckIn_FreePath(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1", ReservedAt: time.Now()}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationFree, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.RegistrationRecord{SeatNumber: "1A", IsPaid: false, RegisteredAt: time.Now()}, nil).Once()
	s.producer.On("Publish", ctx, "status_topic", "pass-1",
		bus.PassengerStatusChanged{PassengerID: "pass-1", NewStatus: "web_checked"}).Return(nil).Once()
	s.baggage.On("TotalWeight", ctx, "order-1", "pass-1").Return(23.5, nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov", PaidSeat: false})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Len(t, resp.Order.Passengers, 1)
	assert.Equal(t, "pass-1", resp.Order.Passengers[0].ID)
	assert.Equal(t, domain.CheckInStatusWebChecked, resp.Order.Passengers[0].CheckInStatus)
	assert.Equal(t, "1A", resp.Order.Passengers[0].SeatNumber)
	assert.Equal(t, 23.5, resp.Order.LuggageWeightKg)

	s.sessions.AssertExpectations(t)
	s.auth.AssertExpectations(t)
	s.orders.AssertExpectations(t)
	s.registrar.AssertExpectations(t)
	s.producer.AssertExpectations(t)
	s.baggage.AssertExpectations(t)
	s.producer.AssertNumberOfCalls(t, "Publish", 1)
}

func TestCheckInService_CheckIn_PaidPath(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1"}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationPaid, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.RegistrationRecord{SeatNumber: "1A", IsPaid: true}, nil).Once()
	s.producer.On("Publish", ctx, "status_topic", "pass-1",
		bus.PassengerStatusChanged{PassengerID: "pass-1", NewStatus: "agent_checked"}).Return(nil).Once()
	s.baggage.On("TotalWeight", ctx, "order-1", "pass-1").Return(23.5, nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov", PaidSeat: true})

	assert.NoError(t, err)
	assert.Equal(t, domain.CheckInStatusAgentChecked, resp.Order.Passengers[0].CheckInStatus)
	s.registrar.AssertExpectations(t)
}

func TestCheckInService_CheckIn_InvalidSessionShortCircuits(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "dead").Return(false, nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "dead", PNR: "PNR1", LastName: "Ivanov"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	s.auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
	s.orders.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.registrar.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckInService_CheckIn_OrderNotFound(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNRX", "Ivanov").Return(nil, domain.ErrOrderNotFound).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNRX", LastName: "Ivanov"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	s.registrar.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckInService_CheckIn_NoMatchingPassenger(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Sidorov").Return(testOrder(), nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Sidorov"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrPassengerNotFound)
	s.registrar.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckInService_CheckIn_MatchesLastNameCaseInsensitively(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "IVANOV").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1"}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationFree, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.RegistrationRecord{SeatNumber: "1A"}, nil).Once()
	s.producer.On("Publish", ctx, "status_topic", "pass-1", mock.Anything).Return(nil).Once()
	s.baggage.On("TotalWeight", ctx, "order-1", "pass-1").Return(0.0, nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "IVANOV"})

	assert.NoError(t, err)
	assert.Equal(t, "pass-1", resp.Order.Passengers[0].ID)
}

func TestCheckInService_CheckIn_SeatConflictIsFatal(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").Return(nil, domain.ErrSeatTaken).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrSeatTaken)
	s.registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckInService_CheckIn_PaymentMissingIsFatal(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1"}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationPaid, "tok", "leg-1", "pass-1", "1A").
		Return(nil, domain.ErrPaymentMissing).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov", PaidSeat: true})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrPaymentMissing)
	s.producer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckInService_CheckIn_NonPositiveBaggageKeepsOrderWeight(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1"}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationFree, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.RegistrationRecord{SeatNumber: "1A"}, nil).Once()
	s.producer.On("Publish", ctx, "status_topic", "pass-1", mock.Anything).Return(nil).Once()
	s.baggage.On("TotalWeight", ctx, "order-1", "pass-1").Return(0.0, nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov"})

	assert.NoError(t, err)
	assert.Equal(t, 20.0, resp.Order.LuggageWeightKg)
}

func TestCheckInService_CheckIn_BaggageFailureIsFatal(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1"}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationFree, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.RegistrationRecord{SeatNumber: "1A"}, nil).Once()
	s.producer.On("Publish", ctx, "status_topic", "pass-1", mock.Anything).Return(nil).Once()
	s.baggage.On("TotalWeight", ctx, "order-1", "pass-1").Return(0.0, errors.New("aggregator down")).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov"})

	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestCheckInService_CheckIn_PublishFailureDoesNotAbort(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("eph-1", nil).Once()
	s.orders.On("Search", ctx, "tok", "PNR1", "Ivanov").Return(testOrder(), nil).Once()
	s.registrar.On("Reserve", ctx, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.SeatReservation{FlightLegID: "leg-1", SeatNumber: "1A", PassengerID: "pass-1"}, nil).Once()
	s.registrar.On("Register", ctx, domain.RegistrationFree, "tok", "leg-1", "pass-1", "1A").
		Return(&domain.RegistrationRecord{SeatNumber: "1A"}, nil).Once()
	s.producer.On("Publish", ctx, "status_topic", "pass-1", mock.Anything).Return(errors.New("broker down")).Once()
	s.baggage.On("TotalWeight", ctx, "order-1", "pass-1").Return(0.0, nil).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov"})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestCheckInService_CheckIn_AuthFailureIsFatal(t *testing.T) {
	s := newSaga()
	ctx := context.Background()

	s.sessions.On("Validate", ctx, "tok").Return(true, nil).Once()
	s.auth.On("Authenticate", ctx, "workflow", "secret").Return("", errors.New("identity subsystem unreachable")).Once()

	resp, err := s.service.CheckIn(ctx, CheckInRequest{SessionToken: "tok", PNR: "PNR1", LastName: "Ivanov"})

	assert.Nil(t, resp)
	assert.Error(t, err)
	s.orders.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
