package di

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"appointer/config"
	"appointer/infras/kafka"
	"appointer/infras/otel"
	"appointer/infras/postgres"
	"appointer/internal/domains/booking/consumer"
	"appointer/internal/domains/booking/event"
	"appointer/shared/lock"
	"appointer/shared/metrics"
	"appointer/transport/http"
)

// App is everything cmd/app runs and closes.
type App struct {
	Config  *config.Config
	HTTP    *http.HTTP
	Kafka   kafka.Client
	Payment *consumer.Payment
	DB      *postgres.Connection
	Otel    otel.Otel
}

var (
	collectors     *metrics.Metrics
	collectorsOnce sync.Once
)

// ProvideMetrics registers the collectors on the default registry once per
// process, which is what /metrics serves.
func ProvideMetrics() *metrics.Metrics {
	collectorsOnce.Do(func() {
		collectors = metrics.New(prometheus.DefaultRegisterer)
	})

	return collectors
}

// ProvideLocker picks the booking lock backend. The in-process lock only
// serializes writers inside one replica.
func ProvideLocker(cfg *config.Config, client goRedis.UniversalClient) lock.Locker {
	if cfg.Scheduling.Lock.Backend == config.LockBackendRedis {
		log.Info().Dur("ttl", cfg.LockTTL()).Msg("Using redis booking lock")

		return lock.NewRedis(client, cfg.LockTTL())
	}

	log.Info().Int("stripes", cfg.LockStripes()).Msg("Using in-process booking lock")

	return lock.NewMemory(cfg.LockStripes())
}

func ProvidePublisher(cfg *config.Config, client kafka.Client, otel otel.Otel) event.Publisher {
	if !cfg.Kafka.Enable {
		return event.NewNoop()
	}

	return event.NewKafka(client, cfg.Kafka.Topics.BookingEvents, otel)
}
