package registration

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Domenick1991/checkin/internal/cache"
	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/Domenick1991/checkin/internal/repository"
)

// Service owns the seat reservation store and the registration records, and
// serves the reserve/register capabilities over the bus.
type Service struct {
	reservations    repository.ReservationRepository
	registrations   repository.RegistrationRepository
	payments        repository.PaymentRepository
	cache           *cache.RedisCache
	reservationsTTL time.Duration
}

func NewService(
	reservations repository.ReservationRepository,
	registrations repository.RegistrationRepository,
	payments repository.PaymentRepository,
	redisCache *cache.RedisCache,
	reservationsTTL time.Duration,
) *Service {
	return &Service{
		reservations:    reservations,
		registrations:   registrations,
		payments:        payments,
		cache:           redisCache,
		reservationsTTL: reservationsTTL,
	}
}

type ReserveInput struct {
	SessionToken string
	FlightLegID  string
	PassengerID  string
	SeatNumber   string
}

type RegisterInput struct {
	SessionToken string
	FlightLegID  string
	PassengerID  string
	SeatNumber   string
}

func (s *Service) Reserve(ctx context.Context, in ReserveInput) (*domain.SeatReservation, error) {
	if in.FlightLegID == "" || in.SeatNumber == "" || in.PassengerID == "" {
		return nil, errors.New("flight leg, seat number and passenger are required")
	}

	res, err := s.reservations.Reserve(ctx, &domain.SeatReservation{
		FlightLegID:  in.FlightLegID,
		SeatNumber:   in.SeatNumber,
		PassengerID:  in.PassengerID,
		SessionToken: in.SessionToken,
	})
	if err != nil {
		return nil, err
	}

	// Invalidation happens only after the row is committed.
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx,
			cache.ReservationKey(res.FlightLegID, res.SeatNumber),
			cache.ReservationsByLegKey(res.FlightLegID),
		); err != nil {
			log.Printf("WARNING: failed to invalidate reservation cache for leg %s: %v", res.FlightLegID, err)
		}
	}
	return res, nil
}

// Register writes the registration record for the given kind. The paid kind is
// gated on a settled payment with a positive amount; the free kind never
// consults payments at all.
func (s *Service) Register(ctx context.Context, kind domain.RegistrationKind, in RegisterInput) (*domain.RegistrationRecord, error) {
	if kind.IsPaid() {
		payment, err := s.payments.Find(ctx, in.SessionToken, in.PassengerID, in.FlightLegID)
		if err != nil {
			return nil, err
		}
		if !payment.IsPaid || payment.Amount <= 0 {
			return nil, domain.ErrPaymentInvalid
		}
	}

	rec := &domain.RegistrationRecord{
		SessionToken: in.SessionToken,
		FlightLegID:  in.FlightLegID,
		PassengerID:  in.PassengerID,
		SeatNumber:   in.SeatNumber,
		IsPaid:       kind.IsPaid(),
	}
	if err := s.registrations.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetReservation reads a single seat claim through the item cache key that
// Reserve invalidates.
func (s *Service) GetReservation(ctx context.Context, flightLegID, seatNumber string) (*domain.SeatReservation, error) {
	if s.cache == nil {
		return s.reservations.GetBySeat(ctx, flightLegID, seatNumber)
	}
	return cache.GetOrCompute(ctx, s.cache, cache.ReservationKey(flightLegID, seatNumber), s.reservationsTTL,
		func(ctx context.Context) (*domain.SeatReservation, error) {
			return s.reservations.GetBySeat(ctx, flightLegID, seatNumber)
		})
}

// ListReservations is the read side used by administrative queries; it goes
// through the cache when one is configured.
func (s *Service) ListReservations(ctx context.Context, flightLegID string) ([]domain.SeatReservation, error) {
	if s.cache == nil {
		return s.reservations.ListByLeg(ctx, flightLegID)
	}
	return cache.GetOrCompute(ctx, s.cache, cache.ReservationsByLegKey(flightLegID), s.reservationsTTL,
		func(ctx context.Context) ([]domain.SeatReservation, error) {
			return s.reservations.ListByLeg(ctx, flightLegID)
		})
}
