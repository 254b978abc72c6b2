package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":4000" validate:"required"`
	Environment     string        `envconfig:"APP_ENV" default:"development" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	// Upstream rainfall providers.
	RainfallTimeout    time.Duration `envconfig:"RAINFALL_TIMEOUT" default:"15s" validate:"gt=0"`
	OpenMeteoURL       string        `envconfig:"OPEN_METEO_URL" default:"https://archive-api.open-meteo.com/v1/archive" validate:"required,url"`
	NASAPowerURL       string        `envconfig:"NASA_POWER_URL" default:"https://power.larc.nasa.gov/api/temporal/hourly/point" validate:"required,url"`
	UserAgent          string        `envconfig:"USER_AGENT" default:"rtrwh-app/1.0" validate:"required"`
	FallbackRainfallMM float64       `envconfig:"FALLBACK_RAINFALL_MM" default:"0" validate:"gte=0,lte=5000"`

	// Opt-in per-source circuit breaker. Zero failures (the default) disables
	// it and every request tries every stage in order.
	BreakerFailures uint32        `envconfig:"RAINFALL_BREAKER_FAILURES" default:"0" validate:"lte=100"`
	BreakerCooldown time.Duration `envconfig:"RAINFALL_BREAKER_COOLDOWN" default:"30s" validate:"gt=0"`

	// Reference data overrides. Empty means the embedded copy.
	GroundwaterCSV   string `envconfig:"GROUNDWATER_CSV"`
	CostTablePath    string `envconfig:"COST_TABLE_PATH"`
	AquifersPath     string `envconfig:"AQUIFERS_PATH"`
	SiteDefaultsPath string `envconfig:"SITE_DEFAULTS_PATH"`

	// Assessment record publishing.
	KafkaEnabled         bool          `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers         []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092" validate:"min=1,dive,required"`
	KafkaTopic           string        `envconfig:"KAFKA_TOPIC" default:"rtrwh-assessments" validate:"required"`
	PublishBatchSize     int           `envconfig:"PUBLISH_BATCH_SIZE" default:"50" validate:"min=1,max=1000"`
	PublishFlushInterval time.Duration `envconfig:"PUBLISH_FLUSH_INTERVAL" default:"1s" validate:"gt=0"`
	PublishQueueSize     int           `envconfig:"PUBLISH_QUEUE_SIZE" default:"1000" validate:"min=1"`
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first if present; it never
// overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := newValidator().Struct(cfg); err != nil {
		return nil, describe(err)
	}
	return &cfg, nil
}

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("envconfig"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("invalid %s: must satisfy %s=%s", name, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("invalid %s: %s", name, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
