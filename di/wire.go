//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"huddle/config"
	"huddle/infras/jwt"
	"huddle/infras/kafka"
	"huddle/infras/normalizer"
	"huddle/infras/otel"
	"huddle/infras/postgres"
	"huddle/infras/redis"
	"huddle/infras/s3"
	"huddle/internal/availability"
	"huddle/internal/jobs"
	"huddle/shared/cache"
	"huddle/transport/http"
	"huddle/transport/http/middleware"
	"huddle/transport/http/router"

	bookingRepository "huddle/internal/domains/booking/repository"
	bookingService "huddle/internal/domains/booking/service"
	recommendationService "huddle/internal/domains/recommendation/service"
	roomRepository "huddle/internal/domains/room/repository"
	roomService "huddle/internal/domains/room/service"

	bookingHandler "huddle/internal/handlers/booking"
	recommendationHandler "huddle/internal/handlers/recommendation"
	roomHandler "huddle/internal/handlers/room"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	normalizer.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	availability.NewIndex,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var recommendationDomain = wire.NewSet(
	recommendationService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	recommendationDomain,
)

var backgroundJobs = wire.NewSet(
	jobs.NewJanitor,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	recommendationHandler.New,
	router.New,
)

func InitializeService() *Service {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		backgroundJobs,
		routing,
		http.New,
		wire.Struct(new(Service), "*"),
	)

	return &Service{}
}
