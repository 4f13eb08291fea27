package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"

	defaultSlotGranularityMinutes = 60
	defaultStorageTimeoutSeconds  = 5
	defaultWriteAttempts          = 3
	defaultLockTTLSeconds         = 10
	defaultLockStripes            = 64
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int    `envconfig:"MAX_RETRY"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable        bool     `envconfig:"ENABLE"`
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			BookingEvents   string `envconfig:"BOOKING_EVENTS"   default:"booking.events"`
			PaymentOutcomes string `envconfig:"PAYMENT_OUTCOMES" default:"payment.outcomes"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	Scheduling struct {
		SlotGranularityMinutes int  `envconfig:"SLOT_GRANULARITY_MINUTES"`
		StorageTimeoutSeconds  int  `envconfig:"STORAGE_TIMEOUT_SECONDS"`
		WriteAttempts          int  `envconfig:"WRITE_ATTEMPTS"`
		EnforceBusinessHours   bool `envconfig:"ENFORCE_BUSINESS_HOURS"`
		Lock                   struct {
			Backend    string `envconfig:"BACKEND"`
			TTLSeconds int    `envconfig:"TTL_SECONDS"`
			Stripes    int    `envconfig:"STRIPES"`
		} `envconfig:"LOCK"`
	} `envconfig:"SCHEDULING"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			Region     string `envconfig:"REGION"`
			Endpoint   string `envconfig:"ENDPOINT"`
			AccessKey  string `envconfig:"ACCESS_KEY"`
			SecretKey  string `envconfig:"SECRET_KEY"`
			BucketName string `envconfig:"BUCKET_NAME"`
			PublicURL  string `envconfig:"PUBLIC_URL"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

// CacheTTL is the lifetime of cached read models. Cache.TTL is in seconds.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// SlotGranularity is the step between candidate slot start times.
func (c *Config) SlotGranularity() time.Duration {
	minutes := c.Scheduling.SlotGranularityMinutes
	if minutes <= 0 {
		minutes = defaultSlotGranularityMinutes
	}

	return time.Duration(minutes) * time.Minute
}

// StorageTimeout bounds every ledger round trip.
func (c *Config) StorageTimeout() time.Duration {
	seconds := c.Scheduling.StorageTimeoutSeconds
	if seconds <= 0 {
		seconds = defaultStorageTimeoutSeconds
	}

	return time.Duration(seconds) * time.Second
}

func (c *Config) WriteAttempts() uint {
	if c.Scheduling.WriteAttempts <= 0 {
		return defaultWriteAttempts
	}

	return uint(c.Scheduling.WriteAttempts)
}

func (c *Config) LockTTL() time.Duration {
	seconds := c.Scheduling.Lock.TTLSeconds
	if seconds <= 0 {
		seconds = defaultLockTTLSeconds
	}

	return time.Duration(seconds) * time.Second
}

func (c *Config) LockStripes() int {
	if c.Scheduling.Lock.Stripes <= 0 {
		return defaultLockStripes
	}

	return c.Scheduling.Lock.Stripes
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}
