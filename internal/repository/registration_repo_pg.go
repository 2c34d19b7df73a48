package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/checkin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepository interface {
	Create(ctx context.Context, rec *domain.RegistrationRecord) error
}

// PaymentRepository reads payment rows written by the payment simulator;
// nothing here ever mutates them.
type PaymentRepository interface {
	Find(ctx context.Context, sessionToken, passengerID, flightLegID string) (*domain.Payment, error)
}

type PGRegistrationRepository struct {
	db *pgxpool.Pool
}

func NewRegistrationRepository(db *pgxpool.Pool) RegistrationRepository {
	return &PGRegistrationRepository{db: db}
}

func (r *PGRegistrationRepository) Create(ctx context.Context, rec *domain.RegistrationRecord) error {
	return r.db.QueryRow(ctx, `INSERT INTO registrations (session_token, flight_leg_id, passenger_id, seat_number, is_paid)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at`,
		rec.SessionToken, rec.FlightLegID, rec.PassengerID, rec.SeatNumber, rec.IsPaid).
		Scan(&rec.ID, &rec.RegisteredAt)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Find(ctx context.Context, sessionToken, passengerID, flightLegID string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT id, session_token, passenger_id, flight_leg_id, amount, is_paid, paid_at
		FROM payments WHERE session_token=$1 AND passenger_id=$2 AND flight_leg_id=$3
		ORDER BY paid_at DESC LIMIT 1`, sessionToken, passengerID, flightLegID)

	var p domain.Payment
	if err := row.Scan(&p.ID, &p.SessionToken, &p.PassengerID, &p.FlightLegID, &p.Amount, &p.IsPaid, &p.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentMissing
		}
		return nil, err
	}
	return &p, nil
}

var (
	_ RegistrationRepository = (*PGRegistrationRepository)(nil)
	_ PaymentRepository      = (*PGPaymentRepository)(nil)
)
