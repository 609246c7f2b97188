//go:build wireinject
// +build wireinject

package di

import (
	"fleet/config"
	"fleet/infras/jwt"
	"fleet/infras/kafka"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/infras/redis"
	"fleet/internal/events"
	bookingHandler "fleet/internal/handlers/booking"
	carHandler "fleet/internal/handlers/car"
	"fleet/permissions"
	"fleet/shared/cache"
	"fleet/shared/clock"
	"fleet/shared/keylock"
	"fleet/transport/http"
	"fleet/transport/http/middleware"
	"fleet/transport/http/router"

	bookingRepository "fleet/internal/domains/booking/repository"
	bookingService "fleet/internal/domains/booking/service"
	carRepository "fleet/internal/domains/car/repository"
	carService "fleet/internal/domains/car/service"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	keylock.New,
	clock.New,
)

var eventing = wire.NewSet(
	events.NewPublisher,
)

var carDomain = wire.NewSet(
	carRepository.New,
	carService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.NewAvailability,
	bookingService.New,
)

var domains = wire.NewSet(
	carDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	carHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		eventing,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
