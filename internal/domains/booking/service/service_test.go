package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"fleet/config"
	"fleet/infras/otel/mocks"
	bookingMocks "fleet/internal/domains/booking/mocks"
	"fleet/internal/domains/booking/model"
	"fleet/internal/domains/booking/model/dto"
	"fleet/internal/domains/booking/service"
	carMocks "fleet/internal/domains/car/mocks"
	carModel "fleet/internal/domains/car/model"
	"fleet/internal/events"
	eventMocks "fleet/internal/events/mocks"
	cacheMocks "fleet/shared/cache/mocks"
	"fleet/shared/clock"
	"fleet/shared/constant"
	gDto "fleet/shared/dto"
	"fleet/shared/failure"
	"fleet/shared/keylock"
)

// today pins the clock so "pickup must not be in the past" is deterministic.
var today = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

type serviceMocks struct {
	repo         *bookingMocks.MockBooking
	carRepo      *carMocks.MockCar
	availability *bookingMocks.MockAvailability
	publisher    *eventMocks.MockPublisher
	cache        *cacheMocks.MockRedisCache
}

func newService(ctrl *gomock.Controller) (service.Booking, serviceMocks) {
	m := serviceMocks{
		repo:         bookingMocks.NewMockBooking(ctrl),
		carRepo:      carMocks.NewMockCar(ctrl),
		availability: bookingMocks.NewMockAvailability(ctrl),
		publisher:    eventMocks.NewMockPublisher(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.IdempotencyTTL = 86400

	svc := service.New(
		m.repo,
		m.carRepo,
		m.availability,
		m.publisher,
		keylock.New(),
		clock.Fixed(today),
		cfg,
		m.cache,
		mocks.NewOtel(),
	)

	return svc, m
}

func renterCtx() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "renter-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleRenter)
}

func userCtx(user, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, user)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func bookableCar() carModel.Car {
	return carModel.Car{
		ID:          "car-1",
		OwnerID:     "owner-1",
		Brand:       "Toyota",
		CarModel:    "Avanza",
		PricePerDay: 50,
		IsAvailable: true,
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	req := dto.CheckAvailabilityRequest{
		CarID:      "car-1",
		PickupDate: "2026-06-10",
		ReturnDate: "2026-06-15",
	}

	tests := []struct {
		name          string
		req           dto.CheckAvailabilityRequest
		setupMock     func()
		wantErr       error
		wantAvailable bool
	}{
		{
			name: "car is free",
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantAvailable: true,
		},
		{
			name: "dates taken",
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantAvailable: false,
		},
		{
			name: "car not open for booking reports unavailable without consulting bookings",
			req:  req,
			setupMock: func() {
				car := bookableCar()
				car.IsAvailable = false

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(car, nil)
			},
			wantAvailable: false,
		},
		{
			name: "return date not after pickup",
			req: dto.CheckAvailabilityRequest{
				CarID:      "car-1",
				PickupDate: "2026-06-15",
				ReturnDate: "2026-06-15",
			},
			setupMock: func() {},
			wantErr:   model.ErrInvalidRange,
		},
		{
			name: "pickup in the past",
			req: dto.CheckAvailabilityRequest{
				CarID:      "car-1",
				PickupDate: "2026-05-20",
				ReturnDate: "2026-06-15",
			},
			setupMock: func() {},
			wantErr:   model.ErrInvalidRange,
		},
		{
			name: "car not found",
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(carModel.Car{}, nil)
			},
			wantErr: model.ErrCarNotFound,
		},
		{
			name: "availability check times out",
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(false, context.DeadlineExceeded)
			},
			wantErr: model.ErrStorageTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.CheckAvailability(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, res.Available)
			assert.Equal(t, tt.req.CarID, res.CarID)
		})
	}
}

func TestBookingService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	req := dto.CreateBookingRequest{
		CarID:      "car-1",
		PickupDate: "2026-06-10",
		ReturnDate: "2026-06-15",
	}

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CreateBookingRequest
		setupMock func()
		wantErr   error
		check     func(t *testing.T, res dto.BookingResponse)
	}{
		{
			name: "successful creation snapshots the price",
			ctx:  renterCtx(),
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, booking model.Booking) error {
						assert.Equal(t, model.StatusPending, booking.Status)
						assert.Equal(t, "renter-1", booking.RenterID)
						assert.InDelta(t, 250.0, booking.Price, 0.001)

						return nil
					})

				m.publisher.EXPECT().
					PublishBookingEvent(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, event events.BookingEvent) {
						assert.Equal(t, events.TypeBookingCreated, event.Type)
					})

				m.cache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				assert.Equal(t, string(model.StatusPending), res.Status)
				assert.Equal(t, "2026-06-10", res.PickupDate)
				assert.InDelta(t, 250.0, res.Price, 0.001)
			},
		},
		{
			name: "missing requester identity",
			ctx:  context.Background(),
			req:  req,
			setupMock: func() {
			},
			wantErr: failure.Unauthorized("missing requester identity"),
		},
		{
			name: "pickup after return",
			ctx:  renterCtx(),
			req: dto.CreateBookingRequest{
				CarID:      "car-1",
				PickupDate: "2026-06-15",
				ReturnDate: "2026-06-10",
			},
			setupMock: func() {},
			wantErr:   model.ErrInvalidRange,
		},
		{
			name: "pickup in the past",
			ctx:  renterCtx(),
			req: dto.CreateBookingRequest{
				CarID:      "car-1",
				PickupDate: "2026-05-01",
				ReturnDate: "2026-06-15",
			},
			setupMock: func() {},
			wantErr:   model.ErrInvalidRange,
		},
		{
			name: "car not open for booking",
			ctx:  renterCtx(),
			req:  req,
			setupMock: func() {
				car := bookableCar()
				car.IsAvailable = false

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(car, nil)
			},
			wantErr: model.ErrCarUnavailable,
		},
		{
			name: "removed car reads as not found",
			ctx:  renterCtx(),
			req:  req,
			setupMock: func() {
				car := bookableCar()
				car.Removed = true

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(car, nil)
			},
			wantErr: model.ErrCarNotFound,
		},
		{
			name: "dates already taken",
			ctx:  renterCtx(),
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: model.ErrDateConflict,
		},
		{
			name: "exclusion constraint violation maps to date conflict",
			ctx:  renterCtx(),
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(&pq.Error{Code: pq.ErrorCode(constant.PqErrorCodeExclusionViolation)})
			},
			wantErr: model.ErrDateConflict,
		},
		{
			name: "storage timeout on insert",
			ctx:  renterCtx(),
			req:  req,
			setupMock: func() {
				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(context.DeadlineExceeded)
			},
			wantErr: model.ErrStorageTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Create(tt.ctx, tt.req)

			if tt.wantErr != nil {
				if fail, ok := tt.wantErr.(*failure.Failure); ok && fail.Code != http.StatusUnauthorized {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Equal(t, failure.GetCode(tt.wantErr), failure.GetCode(err))
				}

				return
			}

			assert.NoError(t, err)

			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestBookingService_Create_Idempotency(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	req := dto.CreateBookingRequest{
		CarID:      "car-1",
		PickupDate: "2026-06-10",
		ReturnDate: "2026-06-15",
	}

	ctx := context.WithValue(renterCtx(), constant.ContextKeyIdempotencyKey, "idem-key-1")

	t.Run("first request stores the reply", func(t *testing.T) {
		m.cache.EXPECT().
			Get(gomock.Any(), "booking:idem:renter-1:idem-key-1", gomock.Any()).
			Return(errors.New("cache miss"))

		m.carRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(bookableCar(), nil)

		m.availability.EXPECT().
			Check(gomock.Any(), "car-1", gomock.Any(), gomock.Any()).
			Return(true, nil)

		m.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			Return(nil)

		m.cache.EXPECT().
			Save(gomock.Any(), "booking:idem:renter-1:idem-key-1", gomock.Any(), 86400).
			Return(nil)

		m.publisher.EXPECT().
			PublishBookingEvent(gomock.Any(), gomock.Any())

		m.cache.EXPECT().
			Clear(gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		res, err := svc.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, string(model.StatusPending), res.Status)
	})

	t.Run("repeated request replays the stored reply", func(t *testing.T) {
		m.cache.EXPECT().
			Get(gomock.Any(), "booking:idem:renter-1:idem-key-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				reply, ok := value.(*dto.BookingResponse)
				assert.True(t, ok)

				reply.ID = "booking-1"
				reply.Status = string(model.StatusPending)

				return nil
			})

		res, err := svc.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "booking-1", res.ID)
	})
}

func TestBookingService_ChangeStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	pending := model.Booking{
		ID:         "booking-1",
		CarID:      "car-1",
		RenterID:   "renter-1",
		PickupDate: time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
		Status:     model.StatusPending,
		Price:      250,
	}

	expectUpdateStatus := func(result model.Status) {
		m.repo.EXPECT().
			UpdateStatus(gomock.Any(), "booking-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, mutate func(model.Booking) (map[string]any, error)) (model.Booking, error) {
				fields, err := mutate(pending)
				if err != nil {
					return model.Booking{}, err
				}

				assert.Equal(t, string(result), fields[model.FieldStatus])

				updated := pending
				updated.Status = result

				return updated, nil
			})
	}

	tests := []struct {
		name       string
		ctx        context.Context
		req        dto.ChangeStatusRequest
		setupMock  func()
		wantErr    error
		wantStatus model.Status
		wantEvent  string
	}{
		{
			name: "owner confirms a pending booking",
			ctx:  userCtx("owner-1", constant.RoleOwner),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "confirmed"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", pending.PickupDate, pending.ReturnDate, gomock.Any(), gomock.Any()).
					Return(true, nil)

				expectUpdateStatus(model.StatusConfirmed)

				m.publisher.EXPECT().
					PublishBookingEvent(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, event events.BookingEvent) {
						assert.Equal(t, events.TypeBookingConfirmed, event.Type)
					})

				m.cache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "confirmation loses to an already confirmed overlap",
			ctx:  userCtx("owner-1", constant.RoleOwner),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "confirmed"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", pending.PickupDate, pending.ReturnDate, gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: model.ErrDateConflict,
		},
		{
			name: "renter cancels their own booking",
			ctx:  renterCtx(),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "cancelled"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				expectUpdateStatus(model.StatusCancelled)

				m.publisher.EXPECT().
					PublishBookingEvent(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, event events.BookingEvent) {
						assert.Equal(t, events.TypeBookingCancelled, event.Type)
					})

				m.cache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantStatus: model.StatusCancelled,
		},
		{
			name: "owner cancels a booking on their car",
			ctx:  userCtx("owner-1", constant.RoleOwner),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "cancelled"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				expectUpdateStatus(model.StatusCancelled)

				m.publisher.EXPECT().
					PublishBookingEvent(gomock.Any(), gomock.Any())

				m.cache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantStatus: model.StatusCancelled,
		},
		{
			name: "renter may not confirm",
			ctx:  renterCtx(),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "confirmed"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)
			},
			wantErr: model.ErrUnauthorized,
		},
		{
			name: "stranger may not cancel",
			ctx:  userCtx("someone-else", constant.RoleRenter),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "cancelled"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)
			},
			wantErr: model.ErrUnauthorized,
		},
		{
			name: "admin may confirm any booking",
			ctx:  userCtx("admin-1", constant.RoleAdmin),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "confirmed"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(pending, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.availability.EXPECT().
					Check(gomock.Any(), "car-1", pending.PickupDate, pending.ReturnDate, gomock.Any(), gomock.Any()).
					Return(true, nil)

				expectUpdateStatus(model.StatusConfirmed)

				m.publisher.EXPECT().
					PublishBookingEvent(gomock.Any(), gomock.Any())

				m.cache.EXPECT().
					Clear(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantStatus: model.StatusConfirmed,
		},
		{
			name: "cancelled booking cannot be cancelled again",
			ctx:  renterCtx(),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "cancelled"},
			setupMock: func() {
				cancelled := pending
				cancelled.Status = model.StatusCancelled

				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(cancelled, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)

				m.repo.EXPECT().
					UpdateStatus(gomock.Any(), "booking-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, mutate func(model.Booking) (map[string]any, error)) (model.Booking, error) {
						_, err := mutate(cancelled)

						return model.Booking{}, err
					})
			},
			wantErr: model.ErrInvalidTransition,
		},
		{
			name: "booking not found",
			ctx:  renterCtx(),
			req:  dto.ChangeStatusRequest{BookingID: "booking-1", Status: "cancelled"},
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: model.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.ChangeStatus(tt.ctx, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, string(tt.wantStatus), res.Status)
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	pending := model.Booking{
		ID:         "booking-1",
		CarID:      "car-1",
		RenterID:   "renter-1",
		PickupDate: time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
		Status:     model.StatusPending,
	}

	m.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(pending, nil)

	m.carRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(bookableCar(), nil)

	m.repo.EXPECT().
		UpdateStatus(gomock.Any(), "booking-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, mutate func(model.Booking) (map[string]any, error)) (model.Booking, error) {
			if _, err := mutate(pending); err != nil {
				return model.Booking{}, err
			}

			cancelled := pending
			cancelled.Status = model.StatusCancelled

			return cancelled, nil
		})

	m.publisher.EXPECT().
		PublishBookingEvent(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, event events.BookingEvent) {
			assert.Equal(t, events.TypeBookingCancelled, event.Type)
		})

	m.cache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.Cancel(renterCtx(), "booking-1")

	assert.NoError(t, err)
	assert.Equal(t, string(model.StatusCancelled), res.Status)
}

func TestBookingService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	booking := model.Booking{
		ID:       "booking-1",
		CarID:    "car-1",
		RenterID: "renter-1",
		Status:   model.StatusPending,
	}

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func()
		wantErr   error
	}{
		{
			name: "renter reads their own booking",
			ctx:  renterCtx(),
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
		},
		{
			name: "car owner reads a booking on their car",
			ctx:  userCtx("owner-1", constant.RoleOwner),
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)
			},
		},
		{
			name: "admin reads any booking",
			ctx:  userCtx("admin-1", constant.RoleAdmin),
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
		},
		{
			name: "stranger is rejected",
			ctx:  userCtx("someone-else", constant.RoleRenter),
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)

				m.carRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(bookableCar(), nil)
			},
			wantErr: model.ErrUnauthorized,
		},
		{
			name: "booking not found",
			ctx:  renterCtx(),
			setupMock: func() {
				m.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: model.ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.Get(tt.ctx, "booking-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "booking-1", res.ID)
		})
	}
}

func TestBookingService_GetByRenter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	params := gDto.QueryParams{Page: 1, Limit: 10}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
		wantTotal int
	}{
		{
			name: "cache miss, fetched from storage",
			setupMock: func() {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(2, nil)

				m.repo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Booking{{ID: "booking-1"}, {ID: "booking-2"}}, nil)

				m.cache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantTotal: 2,
		},
		{
			name: "cache hit",
			setupMock: func() {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						res, ok := value.(*dto.GetBookingsResponse)
						assert.True(t, ok)

						res.TotalData = 5

						return nil
					})
			},
			wantTotal: 5,
		},
		{
			name: "count error",
			setupMock: func() {
				m.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				m.repo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(0, errors.New("count error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.GetByRenter(renterCtx(), params)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantTotal, res.TotalData)
			}
		})
	}
}

func TestBookingService_GetByOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newService(ctrl)

	params := gDto.QueryParams{Page: 1, Limit: 10}
	ctx := userCtx("owner-1", constant.RoleOwner)

	m.cache.EXPECT().
		Get(gomock.Any(), "booking:owner:owner-1:1:10", gomock.Any()).
		Return(errors.New("cache miss"))

	m.repo.EXPECT().
		ListByOwner(gomock.Any(), "owner-1", params).
		Return([]model.Booking{{ID: "booking-1", CarID: "car-1"}}, 1, nil)

	m.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.GetByOwner(ctx, params)

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
	assert.Len(t, res.Bookings, 1)
	assert.Equal(t, "booking-1", res.Bookings[0].ID)
}
