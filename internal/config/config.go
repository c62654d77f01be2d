// Package config loads and validates application configuration from YAML
// files, an optional .env file and environment variables.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOUCHLINE_"

// Data modes for a table.
const (
	ModePaged      = "paged"
	ModeCollection = "collection"
)

// Sort modes for a table.
const (
	SortClient = "client"
	SortServer = "server"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig            `yaml:"server" envPrefix:"SERVER_"`
	Sources       map[string]SourceConfig `yaml:"sources"`
	Tables        map[string]TableConfig  `yaml:"tables"`
	Sessions      SessionConfig           `yaml:"sessions" envPrefix:"SESSIONS_"`
	Observability ObservabilityConfig     `yaml:"observability" envPrefix:"OBSERVABILITY_"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout" env:"HANDLER_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	CORS            CORSConfig    `yaml:"cors" envPrefix:"CORS_"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age" env:"MAX_AGE"`
}

// SourceConfig describes a Remote Data Source.
type SourceConfig struct {
	BaseURL        string               `yaml:"base_url" env:"BASE_URL"`
	Timeout        time.Duration        `yaml:"timeout" env:"TIMEOUT"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker" envPrefix:"CIRCUIT_BREAKER_"`
}

// CircuitBreakerConfig describes circuit breaker settings per source.
type CircuitBreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold" env:"FAILURE_THRESHOLD"`
	SuccessThreshold int           `yaml:"success_threshold" env:"SUCCESS_THRESHOLD"`
	Timeout          time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// TableConfig binds a table to a source and selects its modes.
type TableConfig struct {
	// Entity selects the row type; it defaults to the table name.
	Entity string `yaml:"entity" env:"ENTITY"`
	Title  string `yaml:"title" env:"TITLE"`
	Source string `yaml:"source" env:"SOURCE"`
	Path   string `yaml:"path" env:"PATH"`
	// Mode is "paged" (the source pages and filters) or "collection" (the
	// source returns everything and touchline pages and filters).
	Mode     string        `yaml:"mode" env:"MODE"`
	PageSize int           `yaml:"page_size" env:"PAGE_SIZE"`
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
	SortMode string        `yaml:"sort_mode" env:"SORT_MODE"`
	Locale   string        `yaml:"locale" env:"LOCALE"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

// SessionConfig describes controller session lifetime.
type SessionConfig struct {
	IdleTTL         time.Duration `yaml:"idle_ttl" env:"IDLE_TTL"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL"`
	MaxSessions     int           `yaml:"max_sessions" env:"MAX_SESSIONS"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL"`
	Tracing  TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`
	Metrics  MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	Exporter     string  `yaml:"exporter" env:"EXPORTER"`
	Endpoint     string  `yaml:"endpoint" env:"ENDPOINT"`
	SamplingRate float64 `yaml:"sampling_rate" env:"SAMPLING_RATE"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
}

// Defaults returns a Config with the football tables of the reference
// deployment: a paginated players API and collection endpoints.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
				MaxAge:         86400,
			},
		},
		Sources: map[string]SourceConfig{
			"players-api": {
				BaseURL: "http://localhost:8080",
				Timeout: 10 * time.Second,
				CircuitBreaker: CircuitBreakerConfig{
					FailureThreshold: 5,
					SuccessThreshold: 2,
					Timeout:          30 * time.Second,
				},
			},
			"football-api": {
				BaseURL: "http://localhost:8000",
				Timeout: 10 * time.Second,
				CircuitBreaker: CircuitBreakerConfig{
					FailureThreshold: 5,
					SuccessThreshold: 2,
					Timeout:          30 * time.Second,
				},
			},
		},
		Tables: map[string]TableConfig{
			"players":       {Source: "players-api", Path: "/players", Mode: ModePaged},
			"teams":         {Source: "players-api", Path: "/teams", Mode: ModeCollection},
			"clubs":         {Source: "football-api", Path: "/get_all_clubs", Mode: ModeCollection},
			"leagues":       {Source: "football-api", Path: "/get_all_leagues", Mode: ModeCollection},
			"squad-players": {Source: "football-api", Path: "/get_all_players", Mode: ModeCollection},
		},
		Sessions: SessionConfig{
			IdleTTL:         15 * time.Minute,
			CleanupInterval: time.Minute,
			MaxSessions:     1000,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then a .env file in the working directory (if
// present), then TOUCHLINE_* environment variables. The result is
// normalized and validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		// A file that declares sources or tables replaces the defaults
		// rather than merging into them.
		defaults := Defaults()
		cfg.Sources, cfg.Tables = nil, nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		if cfg.Sources == nil {
			cfg.Sources = defaults.Sources
		}
		if cfg.Tables == nil {
			cfg.Tables = defaults.Tables
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides parses TOUCHLINE_* variables. Map entries are addressed
// by their upper-cased key, e.g. TOUCHLINE_TABLES_PLAYERS_PAGE_SIZE or
// TOUCHLINE_SOURCES_PLAYERS_API_BASE_URL.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return err
	}
	for name, src := range cfg.Sources {
		if err := env.ParseWithOptions(&src, env.Options{Prefix: EnvPrefix + "SOURCES_" + envKey(name) + "_"}); err != nil {
			return fmt.Errorf("source %s: %w", name, err)
		}
		cfg.Sources[name] = src
	}
	for name, tbl := range cfg.Tables {
		if err := env.ParseWithOptions(&tbl, env.Options{Prefix: EnvPrefix + "TABLES_" + envKey(name) + "_"}); err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}
		cfg.Tables[name] = tbl
	}
	return nil
}

func envKey(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// normalize fills per-table defaults.
func (c *Config) normalize() {
	for name, t := range c.Tables {
		if t.Entity == "" {
			t.Entity = name
		}
		if t.Mode == "" {
			t.Mode = ModePaged
		}
		if t.SortMode == "" {
			t.SortMode = SortClient
		}
		if t.PageSize <= 0 {
			t.PageSize = 25
		}
		if t.Debounce <= 0 {
			t.Debounce = 500 * time.Millisecond
		}
		if t.Locale == "" {
			t.Locale = "en"
		}
		if t.Mode == ModeCollection && t.CacheTTL == 0 {
			t.CacheTTL = 5 * time.Minute
		}
		c.Tables[name] = t
	}
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	for _, name := range sortedKeys(c.Sources) {
		if c.Sources[name].BaseURL == "" {
			errs = append(errs, fmt.Sprintf("sources.%s.base_url is required", name))
		}
	}
	if len(c.Tables) == 0 {
		errs = append(errs, "at least one table is required")
	}
	for _, name := range sortedKeys(c.Tables) {
		t := c.Tables[name]
		if _, ok := c.Sources[t.Source]; !ok {
			errs = append(errs, fmt.Sprintf("tables.%s.source %q is not a configured source", name, t.Source))
		}
		if !strings.HasPrefix(t.Path, "/") {
			errs = append(errs, fmt.Sprintf("tables.%s.path must start with /", name))
		}
		if t.Mode != ModePaged && t.Mode != ModeCollection {
			errs = append(errs, fmt.Sprintf("tables.%s.mode must be %q or %q", name, ModePaged, ModeCollection))
		}
		if t.SortMode != SortClient && t.SortMode != SortServer {
			errs = append(errs, fmt.Sprintf("tables.%s.sort_mode must be %q or %q", name, SortClient, SortServer))
		}
	}
	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, "sessions.idle_ttl must be positive")
	}
	if c.Sessions.MaxSessions < 0 {
		errs = append(errs, "sessions.max_sessions must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
