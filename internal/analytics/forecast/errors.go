package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrFitFailure is returned when coefficient estimation does not converge
	// or produces non-finite values.
	ErrFitFailure = errors.New("fit failure")

	// ErrInsufficientHistory is returned when a series is too short for the
	// requested autoregressive order.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrInvalidHorizon is returned for a forecast horizon <= 0.
	ErrInvalidHorizon = errors.New("invalid horizon")

	// ErrInvalidModel is returned for a coefficient count mismatch or a
	// negative or non-finite residual variance.
	ErrInvalidModel = errors.New("invalid model")

	// ErrInvalidConfidence is returned when a confidence level is outside (0, 1).
	ErrInvalidConfidence = errors.New("invalid confidence level")

	// ErrInvalidSeries is returned for series with gaps or non-finite values.
	ErrInvalidSeries = errors.New("invalid series")
)

// FitError describes why an estimator gave up.
type FitError struct {
	Method Method
	Order  int
	Reason string
	Err    error
}

func (e *FitError) Error() string {
	msg := fmt.Sprintf("%s fit of AR(%d) failed: %s", e.Method, e.Order, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match ErrFitFailure as well as the underlying cause.
func (e *FitError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFitFailure, e.Err}
	}
	return []error{ErrFitFailure}
}

func fitFailure(method Method, order int, reason string, cause error) error {
	return &FitError{Method: method, Order: order, Reason: reason, Err: cause}
}
