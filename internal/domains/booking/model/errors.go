package model

import (
	"net/http"

	"fleet/shared/failure"
)

// Booking failures carry the HTTP code they map to. Declared as values so
// callers can match them with errors.Is.
var (
	ErrInvalidRange = &failure.Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: "return date must be after pickup date and pickup must not be in the past",
	}
	ErrCarUnavailable = &failure.Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: "car is not open for booking",
	}
	ErrDateConflict = &failure.Failure{
		Code:    http.StatusConflict,
		Message: "car is already booked for the requested dates",
	}
	ErrInvalidTransition = &failure.Failure{
		Code:    http.StatusUnprocessableEntity,
		Message: "booking status transition not allowed",
	}
	ErrUnauthorized = &failure.Failure{
		Code:    http.StatusForbidden,
		Message: "you are not allowed to manage this booking",
	}
	ErrBookingNotFound = &failure.Failure{
		Code:    http.StatusNotFound,
		Message: "booking not found",
	}
	ErrCarNotFound = &failure.Failure{
		Code:    http.StatusNotFound,
		Message: "car not found",
	}
	ErrStorageTimeout = &failure.Failure{
		Code:    http.StatusGatewayTimeout,
		Message: "storage did not respond in time",
	}
)
