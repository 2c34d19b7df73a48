package domain

import "errors"

var (
	ErrSessionInvalid      = errors.New("session is not live")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPassengerNotFound   = errors.New("no passenger matches the requested last name")
	ErrSeatTaken           = errors.New("seat is taken by another passenger")
	ErrReservationNotFound = errors.New("no reservation for this seat")
	ErrPaymentMissing      = errors.New("no payment found for paid registration")
	ErrPaymentInvalid      = errors.New("payment is not settled or has non-positive amount")
)
