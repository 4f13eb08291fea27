package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"appointer/internal/handlers/auth"
	"appointer/internal/handlers/availability"
	"appointer/internal/handlers/booking"
	"appointer/internal/handlers/businesshours"
	"appointer/internal/handlers/health"
	"appointer/internal/handlers/resource"
	"appointer/internal/handlers/specialist"
	"appointer/internal/handlers/user"
)

type DomainHandlers struct {
	Auth          auth.Handler
	User          user.Handler
	BusinessHours businesshours.Handler
	Specialist    specialist.Handler
	Resource      resource.Handler
	Availability  availability.Handler
	Booking       booking.Handler
	Health        health.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	r.DomainHandlers.Health.Router(router)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.BusinessHours.Router(routerGroup)
		r.DomainHandlers.Specialist.Router(routerGroup)
		r.DomainHandlers.Resource.Router(routerGroup)
		r.DomainHandlers.Availability.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
