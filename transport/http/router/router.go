package router

import (
	"github.com/go-chi/chi/v5"

	"huddle/internal/handlers/booking"
	"huddle/internal/handlers/recommendation"
	"huddle/internal/handlers/room"
)

type DomainHandlers struct {
	Room           room.Handler
	Booking        booking.Handler
	Recommendation recommendation.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Recommendation.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
