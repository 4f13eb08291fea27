//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"appointer/config"
	"appointer/infras/jwt"
	"appointer/infras/kafka"
	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/infras/redis"
	"appointer/infras/s3"
	"appointer/permissions"
	"appointer/shared/cache"
	"appointer/transport/http"
	"appointer/transport/http/middleware"
	"appointer/transport/http/router"

	authService "appointer/internal/domains/auth/service"
	availabilityRepository "appointer/internal/domains/availability/repository"
	availabilityService "appointer/internal/domains/availability/service"
	"appointer/internal/domains/booking/consumer"
	bookingRepository "appointer/internal/domains/booking/repository"
	bookingService "appointer/internal/domains/booking/service"
	businessHoursRepository "appointer/internal/domains/businesshours/repository"
	businessHoursService "appointer/internal/domains/businesshours/service"
	resourceRepository "appointer/internal/domains/resource/repository"
	resourceService "appointer/internal/domains/resource/service"
	specialistRepository "appointer/internal/domains/specialist/repository"
	specialistService "appointer/internal/domains/specialist/service"
	userRepository "appointer/internal/domains/user/repository"
	userService "appointer/internal/domains/user/service"

	authHandler "appointer/internal/handlers/auth"
	availabilityHandler "appointer/internal/handlers/availability"
	bookingHandler "appointer/internal/handlers/booking"
	businessHoursHandler "appointer/internal/handlers/businesshours"
	healthHandler "appointer/internal/handlers/health"
	resourceHandler "appointer/internal/handlers/resource"
	specialistHandler "appointer/internal/handlers/specialist"
	userHandler "appointer/internal/handlers/user"
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
	permissions.Get,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	ProvideMetrics,
	ProvideLocker,
	ProvidePublisher,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	authService.New,
)

var catalogDomain = wire.NewSet(
	businessHoursRepository.New,
	businessHoursService.New,
	specialistRepository.New,
	specialistService.New,
	resourceRepository.New,
	resourceService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
	wire.Bind(new(availabilityService.ActiveChecker), new(specialistService.Specialist)),
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
	consumer.NewPayment,
	wire.Bind(new(bookingService.Windows), new(availabilityService.Availability)),
	wire.Bind(new(bookingService.Hours), new(businessHoursService.BusinessHours)),
	wire.Bind(new(bookingService.SpecialistChecker), new(specialistService.Specialist)),
	wire.Bind(new(bookingService.ResourceChecker), new(resourceService.Resource)),
)

var domains = wire.NewSet(
	userDomain,
	catalogDomain,
	availabilityDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	businessHoursHandler.New,
	specialistHandler.New,
	resourceHandler.New,
	availabilityHandler.New,
	bookingHandler.New,
	healthHandler.New,
	healthHandler.NewProbe,
	router.New,
)

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
