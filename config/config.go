package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
)

const (
	// SchedulerLocal runs auto-advance timers in process.
	SchedulerLocal = "local"
	// SchedulerRiver runs auto-advance as River jobs in Postgres.
	SchedulerRiver = "river"

	defaultAutoAdvanceDelay = 2 * time.Second
	defaultHTTPAddress      = ":8080"
	defaultJWTTTL           = 24 * time.Hour
	defaultRateLimit        = 20.0
	defaultRateBurst        = 40
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	JWT           JWTConfig           `yaml:"jwt"`
	HTTP          HTTPConfig          `yaml:"http"`
	Match         MatchConfig         `yaml:"match"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process event bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
	// DevTokensEnabled exposes POST /api/auth/dev-token, which signs a token
	// for any user id. Off unless set.
	DevTokensEnabled bool `yaml:"dev_tokens_enabled"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// MatchConfig holds round lifecycle settings.
type MatchConfig struct {
	AutoAdvanceDelay time.Duration `yaml:"auto_advance_delay"`
	Scheduler        string        `yaml:"scheduler"` // local|river
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %w", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("JWT_DEV_TOKENS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEV_TOKENS value: %w", err)
		}
		cfg.JWT.DevTokensEnabled = b
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT value: %w", err)
		}
		cfg.HTTP.RateLimit = f
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_BURST value: %w", err)
		}
		cfg.HTTP.RateBurst = n
	}
	if v := os.Getenv("AUTO_ADVANCE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_ADVANCE_DELAY value: %w", err)
		}
		cfg.Match.AutoAdvanceDelay = d
	}
	if v := os.Getenv("MATCH_SCHEDULER"); v != "" {
		cfg.Match.Scheduler = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.JWT.DefaultTTL == 0 {
		c.JWT.DefaultTTL = defaultJWTTTL
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.HTTP.RateLimit == 0 {
		c.HTTP.RateLimit = defaultRateLimit
	}
	if c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = defaultRateBurst
	}
	if c.Match.AutoAdvanceDelay == 0 {
		c.Match.AutoAdvanceDelay = defaultAutoAdvanceDelay
	}
	if c.Match.Scheduler == "" {
		c.Match.Scheduler = SchedulerLocal
	}
}

// Validate reports settings that would fail later at startup.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	switch c.Match.Scheduler {
	case SchedulerLocal, SchedulerRiver:
	default:
		return fmt.Errorf("unknown match.scheduler %q (want %q or %q)", c.Match.Scheduler, SchedulerLocal, SchedulerRiver)
	}
	if c.Match.AutoAdvanceDelay < 0 {
		return fmt.Errorf("match.auto_advance_delay must not be negative")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName: "flashcard-frenzy",
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
	}
}
