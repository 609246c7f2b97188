package service

//go:generate go run go.uber.org/mock/mockgen -source=./availability.go -destination=../mocks/availability_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"fleet/infras/otel"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/repository"
	"fleet/shared/constant"

	"github.com/rs/zerolog/log"
)

// AvailabilityOption narrows which bookings count as blocking.
type AvailabilityOption func(*availabilityQuery)

type availabilityQuery struct {
	statuses  []model.Status
	excludeID string
}

// WithBlockingStatuses overrides the statuses that occupy the range. The
// default blocks on pending and confirmed bookings.
func WithBlockingStatuses(statuses ...model.Status) AvailabilityOption {
	return func(q *availabilityQuery) {
		q.statuses = statuses
	}
}

// WithoutBooking excludes one booking from the check, so a booking is never
// its own conflict when re-validated.
func WithoutBooking(id string) AvailabilityOption {
	return func(q *availabilityQuery) {
		q.excludeID = id
	}
}

// Availability decides whether a car is free for a date range by consulting
// the reservation store. It is read-only; callers needing a race-free answer
// must hold the car's lock across the check and the write that depends on it.
type Availability interface {
	Check(ctx context.Context, carID string, pickup, returnDate time.Time, opts ...AvailabilityOption) (bool, error)
}

type availabilityImpl struct {
	repo repository.Booking
	otel otel.Otel
}

func NewAvailability(repo repository.Booking, otel otel.Otel) Availability {
	return &availabilityImpl{
		repo: repo,
		otel: otel,
	}
}

func (a *availabilityImpl) Check(ctx context.Context, carID string, pickup, returnDate time.Time, opts ...AvailabilityOption) (available bool, err error) {
	ctx, scope := a.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".availability.Check")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := availabilityQuery{
		statuses: model.BlockingStatuses(),
	}

	for _, opt := range opts {
		opt(&query)
	}

	conflicts, err := a.repo.FindOverlapping(ctx, carID, pickup, returnDate, query.excludeID, query.statuses)
	if err != nil {
		log.Error().Err(err).Str("carID", carID).Msg("failed to find overlapping bookings")

		return false, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}

	scope.SetAttribute("availability.conflicts", len(conflicts))

	return len(conflicts) == 0, nil
}
