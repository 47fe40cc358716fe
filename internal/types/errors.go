package types

import "errors"

// Every error is scoped to one symbol in one decision cycle; none stops the
// bot. The next cycle is the retry.
var (
	// ErrInsufficientData means fewer bars exist than a computation needs.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDivisionByZero means a zero stop distance or tick value during sizing.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidSize means sizing produced a volume that cannot be traded.
	ErrInvalidSize = errors.New("invalid position size")
	// ErrOrderRejected means the executor declined the order.
	ErrOrderRejected = errors.New("order rejected")
	// ErrExternalService means a data, account or broker call failed.
	ErrExternalService = errors.New("external service error")
)

// ErrorKind maps an error to a short label for logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrInvalidSize):
		return "invalid_size"
	case errors.Is(err, ErrOrderRejected):
		return "order_rejected"
	case errors.Is(err, ErrExternalService):
		return "external_service"
	default:
		return "other"
	}
}
