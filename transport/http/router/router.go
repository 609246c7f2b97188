package router

import (
	"fleet/internal/handlers/booking"
	"fleet/internal/handlers/car"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Booking booking.Handler
	Car     car.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/api", func(routerGroup chi.Router) {
		r.DomainHandlers.Car.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)

		routerGroup.Route("/owner", func(ownerGroup chi.Router) {
			r.DomainHandlers.Car.OwnerRouter(ownerGroup)
			r.DomainHandlers.Booking.OwnerRouter(ownerGroup)
		})
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
