package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	Reserve(ctx context.Context, res *domain.SeatReservation) (*domain.SeatReservation, error)
	GetBySeat(ctx context.Context, flightLegID, seatNumber string) (*domain.SeatReservation, error)
	ListByLeg(ctx context.Context, flightLegID string) ([]domain.SeatReservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

// Reserve claims (flight_leg_id, seat_number) for a passenger. The unique
// constraint on the pair is the authoritative check: the insert either wins or
// hits the constraint, and on conflict the existing holder decides between an
// idempotent success and domain.ErrSeatTaken.
func (r *PGReservationRepository) Reserve(ctx context.Context, res *domain.SeatReservation) (*domain.SeatReservation, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO seat_reservations (flight_leg_id, seat_number, passenger_id, session_token)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (flight_leg_id, seat_number) DO NOTHING
		RETURNING id, flight_leg_id, seat_number, passenger_id, session_token, reserved_at`,
		res.FlightLegID, res.SeatNumber, res.PassengerID, res.SessionToken)

	var out domain.SeatReservation
	err := row.Scan(&out.ID, &out.FlightLegID, &out.SeatNumber, &out.PassengerID, &out.SessionToken, &out.ReservedAt)
	if err == nil {
		return &out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	existing, err := r.GetBySeat(ctx, res.FlightLegID, res.SeatNumber)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			// Holder vanished between insert and read; the caller can retry.
			return nil, domain.ErrSeatTaken
		}
		return nil, err
	}
	return resolveConflict(existing, res)
}

// resolveConflict decides the outcome of a claim that hit the unique
// constraint: the same passenger gets the existing row back unchanged, any
// other passenger gets domain.ErrSeatTaken.
func resolveConflict(existing, claim *domain.SeatReservation) (*domain.SeatReservation, error) {
	if existing.PassengerID == claim.PassengerID {
		return existing, nil
	}
	return nil, domain.ErrSeatTaken
}

func (r *PGReservationRepository) GetBySeat(ctx context.Context, flightLegID, seatNumber string) (*domain.SeatReservation, error) {
	row := r.db.QueryRow(ctx, `SELECT id, flight_leg_id, seat_number, passenger_id, session_token, reserved_at
		FROM seat_reservations WHERE flight_leg_id=$1 AND seat_number=$2`, flightLegID, seatNumber)
	var res domain.SeatReservation
	if err := row.Scan(&res.ID, &res.FlightLegID, &res.SeatNumber, &res.PassengerID, &res.SessionToken, &res.ReservedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGReservationRepository) ListByLeg(ctx context.Context, flightLegID string) ([]domain.SeatReservation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, flight_leg_id, seat_number, passenger_id, session_token, reserved_at
		FROM seat_reservations WHERE flight_leg_id=$1 ORDER BY seat_number`, flightLegID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.SeatReservation, 0)
	for rows.Next() {
		var res domain.SeatReservation
		if err := rows.Scan(&res.ID, &res.FlightLegID, &res.SeatNumber, &res.PassengerID, &res.SessionToken, &res.ReservedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
