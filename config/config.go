package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingSecret is returned when a required secret is absent from the environment.
var ErrMissingSecret = errors.New("missing required secret")

const (
	wompiSandboxURL    = "https://sandbox.wompi.co/v1"
	wompiProductionURL = "https://production.wompi.co/v1"
)

// WompiConfig holds the payment gateway settings.
type WompiConfig struct {
	PublicKey       string
	IntegritySecret string
	EventsSecret    string
	IsProduction    bool
	APIURL          string
	Currency        string
	ReferencePrefix string
}

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	Wompi WompiConfig

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads an optional .env file and then the process environment.
// The returned config has already been validated.
func Load() (*Config, error) {
	LoadEnvFile()

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile reads .env when present. Variables already set in the
// environment win.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// FromEnv builds a Config from the environment without validating secrets.
func FromEnv() (*Config, error) {
	ttl, err := durationEnv("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	isProduction := strings.EqualFold(os.Getenv("WOMPI_ENV"), "production")
	apiURL := os.Getenv("WOMPI_API_URL")
	if apiURL == "" {
		apiURL = wompiSandboxURL
		if isProduction {
			apiURL = wompiProductionURL
		}
	}

	return &Config{
		Port:     stringEnv("PORT", "8080"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: stringEnv("LOG_LEVEL", "info"),

		DBDriver: stringEnv("DB_DRIVER", "sqlite"),
		DBDSN:    stringEnv("DB_DSN", "storefront.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  ttl,

		Wompi: WompiConfig{
			PublicKey:       os.Getenv("WOMPI_PUBLIC_KEY"),
			IntegritySecret: os.Getenv("WOMPI_INTEGRITY_SECRET"),
			EventsSecret:    os.Getenv("WOMPI_EVENTS_SECRET"),
			IsProduction:    isProduction,
			APIURL:          strings.TrimRight(apiURL, "/"),
			Currency:        stringEnv("CURRENCY", "COP"),
			ReferencePrefix: stringEnv("ORDER_REFERENCE_PREFIX", "kebab_"),
		},

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
	}, nil
}

// Validate fails closed on every secret the server cannot run without.
func (c *Config) Validate() error {
	var missing []string
	for _, s := range []struct{ name, value string }{
		{"JWT_SECRET", c.JWTSecret},
		{"WOMPI_INTEGRITY_SECRET", c.Wompi.IntegritySecret},
		{"WOMPI_EVENTS_SECRET", c.Wompi.EventsSecret},
	} {
		if s.value == "" {
			missing = append(missing, s.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}

	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.Wompi.ReferencePrefix == "" {
		return errors.New("ORDER_REFERENCE_PREFIX must not be empty")
	}
	return nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
