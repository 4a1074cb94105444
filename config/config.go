package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Required environment keys. Absence of any of them is startup-fatal and all
// absent keys are reported together.
const (
	EnvDBHost    = "DB_HOST"
	EnvDBPort    = "DB_PORT"
	EnvDBUser    = "DB_USER"
	EnvDBPass    = "DB_PASS"
	EnvDBName    = "DB_NAME"
	EnvCacheHost = "CACHE_HOST"
	EnvCachePort = "CACHE_PORT"
	EnvNetwork   = "NETWORK"
)

// networkNameRe matches docker-style network identifiers.
var networkNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Config represents the complete runtime configuration. It is constructed
// once per process by New and never mutated afterwards; consumers receive it
// by explicit injection, never through package-level state.
type Config struct {
	Database      DatabaseConfig
	Cache         CacheConfig
	Network       string `env:"NETWORK" validate:"required,network_name"`
	Probe         ProbeConfig
	Server        ServerConfig
	Observability ObservabilityConfig
}

// DatabaseConfig holds the PostgreSQL connection descriptor.
type DatabaseConfig struct {
	Host            string `env:"DB_HOST" validate:"required"`
	Port            int    `env:"DB_PORT" validate:"min=1,max=65535"`
	User            string `env:"DB_USER" validate:"required"`
	Password        string `env:"DB_PASS" validate:"required"`
	Name            string `env:"DB_NAME" validate:"required"`
	SSLMode         string `env:"DB_SSLMODE" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CacheConfig holds the Redis connection descriptor. Password is optional;
// an empty value means the cache accepts unauthenticated connections.
type CacheConfig struct {
	Host     string `env:"CACHE_HOST" validate:"required"`
	Port     int    `env:"CACHE_PORT" validate:"min=1,max=65535"`
	Password string `env:"CACHE_PASSWORD"`
	DB       int    `env:"CACHE_DB" validate:"min=0"`
}

// ProbeConfig bounds the connectivity probes run before readiness.
type ProbeConfig struct {
	// Timeout bounds each individual dependency probe.
	Timeout time.Duration
	// StartupTimeout bounds the whole load-and-validate phase, including
	// any retry loop the caller runs around the probes.
	StartupTimeout time.Duration
}

// ServerConfig holds the health/readiness HTTP surface configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=json console"`
}

// New creates a Config by reading the process environment. A .env file in
// the working directory is loaded first when present; real environment
// variables always win over file entries.
//
// Required keys are checked collect-all: the returned MissingConfigError
// names every absent key. Present values are parsed eagerly into typed
// fields; every malformed value is reported through a single
// InvalidConfigError naming the key and the expected shape.
func New(ctx context.Context) (*Config, error) {
	_ = godotenv.Load(".env")

	r := &envReader{}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:            r.required(EnvDBHost),
			Port:            r.requiredPort(EnvDBPort),
			User:            r.required(EnvDBUser),
			Password:        r.required(EnvDBPass),
			Name:            r.required(EnvDBName),
			SSLMode:         r.optional("DB_SSLMODE", "disable"),
			MaxOpenConns:    r.optionalInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    r.optionalInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: r.optionalDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Cache: CacheConfig{
			Host:     r.required(EnvCacheHost),
			Port:     r.requiredPort(EnvCachePort),
			Password: r.optional("CACHE_PASSWORD", ""),
			DB:       r.optionalInt("CACHE_DB", 0),
		},
		Network: r.required(EnvNetwork),
		Probe: ProbeConfig{
			Timeout:        r.optionalDuration("PROBE_TIMEOUT", 5*time.Second),
			StartupTimeout: r.optionalDuration("STARTUP_TIMEOUT", 30*time.Second),
		},
		Server: ServerConfig{
			Addr:            r.optional("HTTP_ADDR", ":8080"),
			ShutdownTimeout: r.optionalDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:  r.optional("LOG_LEVEL", "info"),
			LogFormat: r.optional("LOG_FORMAT", "json"),
		},
	}

	if len(r.missing) > 0 {
		sort.Strings(r.missing)
		return nil, &MissingConfigError{Keys: r.missing}
	}

	r.validateShape(cfg)

	if len(r.invalid) > 0 {
		return nil, &InvalidConfigError{Fields: r.invalid}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string. Never log this value; use
// LogString instead.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Name)
}

// Addr returns the host:port address of the cache.
func (c *CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogString returns a safe string for logging (no auth token).
func (c *CacheConfig) LogString() string {
	return fmt.Sprintf("addr=%s db=%d", c.Addr(), c.DB)
}

// envReader accumulates missing and malformed keys while the environment is
// read, so a single startup failure carries the full diagnostic.
type envReader struct {
	missing []string
	invalid []FieldError
}

func (r *envReader) required(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		r.missing = append(r.missing, key)
	}
	return value
}

func (r *envReader) requiredPort(key string) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		r.missing = append(r.missing, key)
		return 0
	}
	port, err := strconv.Atoi(value)
	if err != nil {
		r.addInvalid(key, value, "network port in 1..65535")
		return 0
	}
	return port
}

func (r *envReader) optional(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (r *envReader) optionalInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.addInvalid(key, value, "integer")
		return defaultValue
	}
	return n
}

func (r *envReader) optionalDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		r.addInvalid(key, value, `positive Go duration (e.g. "5s")`)
		return defaultValue
	}
	return d
}

func (r *envReader) addInvalid(key, value, want string) {
	for _, f := range r.invalid {
		if f.Key == key {
			return
		}
	}
	r.invalid = append(r.invalid, FieldError{Key: key, Value: value, Want: want})
}

func (r *envReader) seen(key string) bool {
	for _, f := range r.invalid {
		if f.Key == key {
			return true
		}
	}
	return false
}

// validateShape runs struct-level validation on the assembled config and
// maps every violation back to its environment key.
func (r *envReader) validateShape(cfg *Config) {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	// Registration only fails for an empty tag name.
	_ = validate.RegisterValidation("network_name", func(fl validator.FieldLevel) bool {
		return networkNameRe.MatchString(fl.Field().String())
	})

	err := validate.Struct(cfg)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		r.addInvalid("CONFIG", err.Error(), "valid configuration")
		return
	}

	for _, fe := range verrs {
		key := fe.Field()
		if r.seen(key) {
			continue
		}
		r.addInvalid(key, fmt.Sprintf("%v", fe.Value()), expectedShape(fe))
	}
}

// expectedShape translates a validator tag into the human-readable shape
// reported in InvalidConfigError.
func expectedShape(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		if fe.Field() == EnvDBPort || fe.Field() == EnvCachePort {
			return "network port in 1..65535"
		}
		return fmt.Sprintf("value with %s=%s", fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("one of [%s]", fe.Param())
	case "network_name":
		return "identifier matching [A-Za-z0-9][A-Za-z0-9_.-]*"
	case "required":
		return "non-empty value"
	default:
		return fmt.Sprintf("value satisfying %q", fe.Tag())
	}
}
