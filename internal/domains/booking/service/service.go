package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fleet/config"
	"fleet/infras/otel"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/model/dto"
	"fleet/internal/domains/booking/repository"
	carModel "fleet/internal/domains/car/model"
	carRepository "fleet/internal/domains/car/repository"
	"fleet/internal/events"
	"fleet/shared"
	"fleet/shared/cache"
	"fleet/shared/clock"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/failure"
	"fleet/shared/keylock"
	"fleet/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheRenterBookings  = "booking:renter"
	cacheOwnerBookings   = "booking:owner"
	cacheIdempotentReply = "booking:idem"
)

type Booking interface {
	CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (dto.AvailabilityResponse, error)
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	ChangeStatus(ctx context.Context, req dto.ChangeStatusRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetByRenter(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	GetByOwner(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
}

type serviceImpl struct {
	repo         repository.Booking
	carRepo      carRepository.Car
	availability Availability
	events       events.Publisher
	locks        *keylock.KeyedMutex
	clock        clock.Clock
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	carRepo carRepository.Car,
	availability Availability,
	publisher events.Publisher,
	locks *keylock.KeyedMutex,
	clk clock.Clock,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		carRepo:      carRepo,
		availability: availability,
		events:       publisher,
		locks:        locks,
		clock:        clk,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// CheckAvailability is advisory: the answer can go stale the moment it is
// returned, and Create re-validates under the car's lock.
func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	pickup, returnDate, err := req.ParseRange()
	if err != nil {
		return res, err
	}

	if err = s.validateRange(pickup, returnDate); err != nil {
		return res, err
	}

	car, err := s.loadCar(ctx, req.CarID)
	if err != nil {
		return res, err
	}

	res = dto.AvailabilityResponse{
		CarID:      req.CarID,
		PickupDate: req.PickupDate,
		ReturnDate: req.ReturnDate,
	}

	if !car.Bookable() {
		return res, nil
	}

	available, err := s.availability.Check(ctx, req.CarID, pickup, returnDate)
	if err != nil {
		return res, s.storageError(err, "failed to check availability")
	}

	res.Available = available

	return res, nil
}

// Create books the car for the requested range. The availability check and
// the insert run under the car's lock, so two competing requests for
// intersecting ranges resolve to exactly one booking; the storage exclusion
// constraint backstops anything that slips past the lock.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	renter, _, err := s.requester(ctx)
	if err != nil {
		return res, err
	}

	idemKey, _ := ctx.Value(constant.ContextKeyIdempotencyKey).(string)
	idemCacheKey := constant.Empty

	if idemKey != constant.Empty {
		idemCacheKey = shared.BuildCacheKey(cacheIdempotentReply, renter, idemKey)

		if cacheErr := s.cache.Get(ctx, idemCacheKey, &res); cacheErr == nil {
			log.Info().Str("idempotencyKey", idemKey).Str("renter", renter).Msg("replaying idempotent booking creation")

			return res, nil
		}
	}

	pickup, returnDate, err := req.ParseRange()
	if err != nil {
		return res, err
	}

	if err = s.validateRange(pickup, returnDate); err != nil {
		return res, err
	}

	unlock := s.locks.Lock(req.CarID)
	defer unlock()

	// The availability flag is read once at the start of the critical section;
	// an owner toggling it mid-flight may still admit one booking at the
	// boundary, which is acceptable.
	car, err := s.loadCar(ctx, req.CarID)
	if err != nil {
		return res, err
	}

	if !car.Bookable() {
		return res, model.ErrCarUnavailable
	}

	available, err := s.availability.Check(ctx, req.CarID, pickup, returnDate)
	if err != nil {
		return res, s.storageError(err, "failed to check availability")
	}

	if !available {
		return res, model.ErrDateConflict
	}

	booking := req.ToModel(renter, pickup, returnDate, car.PricePerDay)

	if err = s.repo.Insert(ctx, booking); err != nil {
		if repository.IsOverlapViolation(err) {
			return res, model.ErrDateConflict
		}

		return res, s.storageError(err, "failed to create booking")
	}

	res.FromModel(booking)

	if idemCacheKey != constant.Empty {
		if cacheErr := s.cache.Save(ctx, idemCacheKey, res, s.cfg.Booking.IdempotencyTTL); cacheErr != nil {
			log.Error().Err(cacheErr).Str("idempotencyKey", idemKey).Msg("failed to store idempotent booking reply")
		}
	}

	s.events.PublishBookingEvent(ctx, events.NewBookingEvent(events.TypeBookingCreated, booking))
	s.invalidateBookingCaches(ctx)

	return res, nil
}

// ChangeStatus moves the booking through its lifecycle. Confirmation
// re-validates the range against other confirmed bookings under the car's
// lock, so the first of two overlapping pendings to be confirmed wins and the
// second gets a date conflict.
func (s *serviceImpl) ChangeStatus(ctx context.Context, req dto.ChangeStatusRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangeStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, role, err := s.requester(ctx)
	if err != nil {
		return res, err
	}

	target := model.Status(req.Status)

	current, err := s.repo.Get(ctx, shared.FilterByID(req.BookingID, model.FieldID, model.TableName))
	if err != nil {
		return res, s.storageError(err, "failed to get booking")
	}

	if current.ID == constant.Empty {
		return res, model.ErrBookingNotFound
	}

	car, err := s.loadCar(ctx, current.CarID)
	if err != nil {
		return res, err
	}

	if err = authorizeStatusChange(user, role, target, current, car); err != nil {
		return res, err
	}

	unlock := s.locks.Lock(current.CarID)
	defer unlock()

	if target == model.StatusConfirmed {
		available, err := s.availability.Check(ctx, current.CarID, current.PickupDate, current.ReturnDate,
			WithBlockingStatuses(model.StatusConfirmed),
			WithoutBooking(current.ID),
		)
		if err != nil {
			return res, s.storageError(err, "failed to re-check availability")
		}

		if !available {
			return res, model.ErrDateConflict
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, req.BookingID, func(b model.Booking) (map[string]any, error) {
		if !b.Status.CanTransitionTo(target) {
			log.Error().Str("bookingID", b.ID).Str("from", string(b.Status)).Str("to", string(target)).Msg("booking status transition not allowed")

			return nil, model.ErrInvalidTransition
		}

		return map[string]any{
			model.FieldStatus:        string(target),
			constant.FieldModifiedAt: timezone.Now(),
			constant.FieldModifiedBy: user,
		}, nil
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			return res, err
		}

		return res, s.storageError(err, "failed to update booking status")
	}

	if updated.ID == constant.Empty {
		return res, model.ErrBookingNotFound
	}

	eventType := events.TypeBookingCancelled
	if target == model.StatusConfirmed {
		eventType = events.TypeBookingConfirmed
	}

	s.events.PublishBookingEvent(ctx, events.NewBookingEvent(eventType, updated))
	s.invalidateBookingCaches(ctx)

	res.FromModel(updated)

	return res, nil
}

// Cancel is ChangeStatus to cancelled; either party to the booking may do it.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (dto.BookingResponse, error) {
	return s.ChangeStatus(ctx, dto.ChangeStatusRequest{
		BookingID: id,
		Status:    string(model.StatusCancelled),
	})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, role, err := s.requester(ctx)
	if err != nil {
		return res, err
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		return res, s.storageError(err, "failed to get booking")
	}

	if booking.ID == constant.Empty {
		return res, model.ErrBookingNotFound
	}

	if booking.RenterID != user && role != constant.RoleAdmin {
		car, err := s.loadCar(ctx, booking.CarID)
		if err != nil {
			return res, err
		}

		if car.OwnerID != user {
			return res, model.ErrUnauthorized
		}
	}

	res.FromModel(booking)

	return res, nil
}

// GetByRenter lists the requester's own bookings.
func (s *serviceImpl) GetByRenter(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByRenter")
	defer scope.End()
	defer scope.TraceIfError(err)

	renter, _, err := s.requester(ctx)
	if err != nil {
		return res, err
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldRenterID,
				Value:    renter,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheRenterBookings, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for renter bookings")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return res, s.storageError(err, "failed to count renter bookings")
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		return res, s.storageError(err, "failed to get renter bookings")
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save renter bookings to cache")
		}
	}()

	return res, nil
}

// GetByOwner lists bookings made against any of the requester's cars.
func (s *serviceImpl) GetByOwner(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetByOwner")
	defer scope.End()
	defer scope.TraceIfError(err)

	owner, _, err := s.requester(ctx)
	if err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheOwnerBookings, owner, strconv.Itoa(params.Page), strconv.Itoa(params.Limit))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for owner bookings")

		return res, nil
	}

	models, total, err := s.repo.ListByOwner(ctx, owner, params)
	if err != nil {
		return res, s.storageError(err, "failed to list owner bookings")
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save owner bookings to cache")
		}
	}()

	return res, nil
}

// validateRange enforces calendar-date booking rules: return strictly after
// pickup and pickup not in the past.
func (s *serviceImpl) validateRange(pickup, returnDate time.Time) error {
	if !pickup.Before(returnDate) {
		return model.ErrInvalidRange
	}

	if pickup.Before(s.clock.Today()) {
		return model.ErrInvalidRange
	}

	return nil
}

func (s *serviceImpl) requester(ctx context.Context) (string, string, error) {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if user == constant.Empty {
		return user, role, failure.Unauthorized("missing requester identity") // nolint:wrapcheck
	}

	return user, role, nil
}

func (s *serviceImpl) loadCar(ctx context.Context, id string) (carModel.Car, error) {
	car, err := s.carRepo.Get(ctx, shared.FilterByID(id, carModel.FieldID, carModel.TableName))
	if err != nil {
		return car, s.storageError(err, "failed to get car")
	}

	if car.ID == constant.Empty || car.Removed {
		return car, model.ErrCarNotFound
	}

	return car, nil
}

// storageError maps a storage deadline to the timeout failure; anything else
// is wrapped as-is.
func (s *serviceImpl) storageError(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg(msg + ": storage timeout")

		return model.ErrStorageTimeout
	}

	log.Error().Err(err).Msg(msg)

	return fmt.Errorf("%s: %w", msg, err)
}

// authorizeStatusChange encodes who may move a booking: the car's owner
// confirms, either party cancels, admins do anything.
func authorizeStatusChange(user, role string, target model.Status, booking model.Booking, car carModel.Car) error {
	if role == constant.RoleAdmin {
		return nil
	}

	switch target {
	case model.StatusConfirmed:
		if car.OwnerID == user {
			return nil
		}
	case model.StatusCancelled:
		if booking.RenterID == user || car.OwnerID == user {
			return nil
		}
	}

	return model.ErrUnauthorized
}

func (s *serviceImpl) invalidateBookingCaches(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheRenterBookings)
		shared.InvalidateCaches(c, s.cache, cacheOwnerBookings)
	}()
}
