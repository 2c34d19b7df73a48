package bus

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/checkin/internal/domain"
)

// ErrTimeout means the reply never arrived: the request may or may not have
// been handled remotely. Transport failures mean it was definitely not sent.
var ErrTimeout = errors.New("rpc call timed out")

type TransportError struct {
	Kind string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure on %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Stable wire codes so domain errors survive the bus round trip.
const (
	codeSessionInvalid     = "session_invalid"
	codeOrderNotFound      = "order_not_found"
	codePassengerNotFound  = "passenger_not_found"
	codeSeatTaken          = "seat_taken"
	codeReservationMissing = "reservation_not_found"
	codePaymentMissing     = "payment_missing"
	codePaymentInvalid     = "payment_invalid"
	codeInternal           = "internal"
)

func codeForError(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionInvalid):
		return codeSessionInvalid
	case errors.Is(err, domain.ErrOrderNotFound):
		return codeOrderNotFound
	case errors.Is(err, domain.ErrPassengerNotFound):
		return codePassengerNotFound
	case errors.Is(err, domain.ErrSeatTaken):
		return codeSeatTaken
	case errors.Is(err, domain.ErrReservationNotFound):
		return codeReservationMissing
	case errors.Is(err, domain.ErrPaymentMissing):
		return codePaymentMissing
	case errors.Is(err, domain.ErrPaymentInvalid):
		return codePaymentInvalid
	default:
		return codeInternal
	}
}

func errorFromCode(code, message string) error {
	switch code {
	case codeSessionInvalid:
		return domain.ErrSessionInvalid
	case codeOrderNotFound:
		return domain.ErrOrderNotFound
	case codePassengerNotFound:
		return domain.ErrPassengerNotFound
	case codeSeatTaken:
		return domain.ErrSeatTaken
	case codeReservationMissing:
		return domain.ErrReservationNotFound
	case codePaymentMissing:
		return domain.ErrPaymentMissing
	case codePaymentInvalid:
		return domain.ErrPaymentInvalid
	default:
		return fmt.Errorf("remote error: %s", message)
	}
}
