// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

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
	repository2 "huddle/internal/domains/booking/repository"
	service2 "huddle/internal/domains/booking/service"
	service3 "huddle/internal/domains/recommendation/service"
	"huddle/internal/domains/room/repository"
	"huddle/internal/domains/room/service"
	"huddle/internal/handlers/booking"
	"huddle/internal/handlers/recommendation"
	"huddle/internal/handlers/room"
	"huddle/internal/jobs"
	"huddle/shared/cache"
	"huddle/transport/http"
	"huddle/transport/http/middleware"
	"huddle/transport/http/router"
)

// Injectors from wire.go:

func InitializeService() *Service {
	configConfig := config.Get()
	connection := postgres.New(configConfig)
	otelOtel := otel.New(configConfig)
	repositoryRoom := repository.New(connection, otelOtel)
	client := redis.New(configConfig)
	redisCache := cache.NewRedisCache(client, otelOtel)
	s3S3 := s3.New(configConfig, otelOtel)
	serviceRoom := service.New(repositoryRoom, configConfig, redisCache, otelOtel, s3S3)
	jwtJWT := jwt.New(configConfig)
	auth := middleware.NewAuthMiddleware(jwtJWT, otelOtel)
	handler := room.New(serviceRoom, auth, otelOtel)
	repositoryBooking := repository2.New(connection, otelOtel)
	index := availability.NewIndex()
	kafkaClient := kafka.New(configConfig)
	serviceBooking := service2.New(repositoryBooking, serviceRoom, index, configConfig, kafkaClient, otelOtel)
	bookingHandler := booking.New(serviceBooking, auth, otelOtel)
	normalizerNormalizer := normalizer.New(configConfig, otelOtel)
	serviceRecommendation := service3.New(serviceRoom, index, normalizerNormalizer, configConfig, otelOtel)
	recommendationHandler := recommendation.New(serviceRecommendation, otelOtel)
	domainHandlers := router.DomainHandlers{
		Room:           handler,
		Booking:        bookingHandler,
		Recommendation: recommendationHandler,
	}
	routerRouter := router.New(domainHandlers)
	appMiddleware := middleware.NewAppMiddleware(otelOtel, configConfig, redisCache)
	httpHTTP := http.New(configConfig, routerRouter, appMiddleware)
	janitor := jobs.NewJanitor(index, configConfig, otelOtel)
	diService := &Service{
		HTTP:     httpHTTP,
		Bookings: serviceBooking,
		Janitor:  janitor,
	}
	return diService
}

// wire.go:

var configurations = wire.NewSet(config.Get)

var infrastructures = wire.NewSet(postgres.New, otel.New, redis.New, jwt.New, kafka.New, s3.New, normalizer.New)

var middlewares = wire.NewSet(middleware.NewAppMiddleware, middleware.NewAuthMiddleware)

var sharedHelpers = wire.NewSet(cache.NewRedisCache, availability.NewIndex)

var roomDomain = wire.NewSet(repository.New, service.New)

var bookingDomain = wire.NewSet(repository2.New, service2.New)

var recommendationDomain = wire.NewSet(service3.New)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	recommendationDomain,
)

var backgroundJobs = wire.NewSet(jobs.NewJanitor)

var routing = wire.NewSet(wire.Struct(new(router.DomainHandlers), "*"), room.New, booking.New, recommendation.New, router.New)
