// Package config provides application configuration loaded from an optional
// .env file and environment variables, with defaults and validation. It
// centralizes server timeouts, logging, upstream endpoints, Kafka, retry and
// polling policies, rate limiting and observability settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig holds the base URLs of the systems this service calls.
type UpstreamConfig struct {
	SafURL           string // SAF_URL (GraphQL endpoint)
	DokarkivURL      string // DOKARKIV_URL
	DokarkivProxyURL string // DOKARKIV_PROXY_URL
	OppgaveURL       string // OPPGAVE_URL
	DokdistURL       string // DOKDIST_URL
	PersonURL        string // PERSON_URL
	OrganisasjonURL  string // ORGANISASJON_URL
	Timeout time.Duration

	// OrganisasjonCacheTTL bounds how long unit and case handler lookups are reused.
	OrganisasjonCacheTTL time.Duration
}

// KafkaConfig defines the outbound event producer.
type KafkaConfig struct {
	Brokers      []string // KAFKA_BROKERS (comma separated)
	Topic        string   // TOPIC_JOURNALPOST
	ClientID string
	CertFile     string // KAFKA_CERTIFICATE_PATH, enables TLS
	KeyFile      string
	CAFile       string
	WriteTimeout time.Duration
}

// PublishConfig is the retry policy of the event publisher.
type PublishConfig struct {
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
	MaxAttempts     int
}

// ConsistencyConfig is the read-after-write polling used while waiting for
// the archive to reflect a write made by another system.
type ConsistencyConfig struct {
	PollInterval time.Duration
	PollAttempts int
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Upstream systems
	Upstream UpstreamConfig

	// Events
	Kafka   KafkaConfig
	Publish PublishConfig

	Consistency ConsistencyConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	DBPath         string        // SQLite path for the idempotency store
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

var defaults = map[string]any{
	"PORT":                "8080",
	"READ_TIMEOUT":        15 * time.Second,
	"READ_HEADER_TIMEOUT": 10 * time.Second,
	"WRITE_TIMEOUT":       20 * time.Second,
	"IDLE_TIMEOUT":        60 * time.Second,
	"MAX_HEADER_BYTES":    1 << 20,
	"GIN_MODE":            "release",

	"LOG_LEVEL":       "info",
	"LOG_PRETTY":      false,
	"SWAGGER_ENABLED": false,
	"API_BASE_PATH":   "/bidrag-dokument-arkiv",

	"SAF_URL":                "http://localhost:8090/graphql",
	"DOKARKIV_URL":           "http://localhost:8091",
	"DOKARKIV_PROXY_URL":     "http://localhost:8092",
	"OPPGAVE_URL":            "http://localhost:8093",
	"DOKDIST_URL":            "http://localhost:8094",
	"PERSON_URL":             "http://localhost:8095",
	"ORGANISASJON_URL":       "http://localhost:8096",
	"UPSTREAM_TIMEOUT":       30 * time.Second,
	"ORGANISASJON_CACHE_TTL": time.Hour,

	"KAFKA_BROKERS":          "localhost:9092",
	"TOPIC_JOURNALPOST":      "bidrag.journalpost",
	"KAFKA_CLIENT_ID":        "bidrag-dokument-arkiv",
	"KAFKA_CERTIFICATE_PATH": "",
	"KAFKA_PRIVATE_KEY_PATH": "",
	"KAFKA_CA_PATH":          "",
	"KAFKA_WRITE_TIMEOUT":    10 * time.Second,

	"PUBLISH_RETRY_INITIAL":      time.Second,
	"PUBLISH_RETRY_MULTIPLIER":   2.0,
	"PUBLISH_RETRY_MAX_INTERVAL": 12 * time.Second,
	"PUBLISH_RETRY_MAX_ATTEMPTS": 10,

	"CONSISTENCY_POLL_INTERVAL": 2 * time.Second,
	"CONSISTENCY_POLL_ATTEMPTS": 3,

	"RATE_RPS":   5.0,
	"RATE_BURST": 10,

	"CORS_ALLOWED_ORIGINS": "",
	"ENABLE_HSTS":          false,
	"HSTS_MAX_AGE":         180 * 24 * time.Hour,

	"DB_PATH":         "idempotency.db",
	"IDEMPOTENCY_TTL": 24 * time.Hour,

	"OTEL_ENABLED":                false,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"OTEL_EXPORTER_OTLP_INSECURE": true,
	"OTEL_SERVICE_NAME":           "bidrag-dokument-arkiv",
	"OTEL_TRACES_SAMPLER_ARG":     1.0,
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads a .env file when present, then environment variables,
// applies defaults, normalizes values, and validates the result.
// Variables already set in the environment win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()

	e := newEnv()
	cfg := Config{
		// Server
		Port:              e.str("PORT"),
		ReadTimeout:       e.dur("READ_TIMEOUT"),
		ReadHeaderTimeout: e.dur("READ_HEADER_TIMEOUT"),
		WriteTimeout:      e.dur("WRITE_TIMEOUT"),
		IdleTimeout:       e.dur("IDLE_TIMEOUT"),
		MaxHeaderBytes:    e.int("MAX_HEADER_BYTES"),
		GinMode:           strings.ToLower(e.str("GIN_MODE")),

		// Logging / Docs
		LogLevel:       strings.ToLower(e.str("LOG_LEVEL")),
		LogPretty:      e.bool("LOG_PRETTY"),
		SwaggerEnabled: e.bool("SWAGGER_ENABLED"),
		APIBasePath:    normalizeBasePath(e.str("API_BASE_PATH")),

		Upstream: UpstreamConfig{
			SafURL:               e.str("SAF_URL"),
			DokarkivURL:          e.str("DOKARKIV_URL"),
			DokarkivProxyURL:     e.str("DOKARKIV_PROXY_URL"),
			OppgaveURL:           e.str("OPPGAVE_URL"),
			DokdistURL:           e.str("DOKDIST_URL"),
			PersonURL:            e.str("PERSON_URL"),
			OrganisasjonURL:      e.str("ORGANISASJON_URL"),
			Timeout:              e.dur("UPSTREAM_TIMEOUT"),
			OrganisasjonCacheTTL: e.dur("ORGANISASJON_CACHE_TTL"),
		},

		Kafka: KafkaConfig{
			Brokers:      splitCSV(e.str("KAFKA_BROKERS")),
			Topic:        e.str("TOPIC_JOURNALPOST"),
			ClientID:     e.str("KAFKA_CLIENT_ID"),
			CertFile:     e.str("KAFKA_CERTIFICATE_PATH"),
			KeyFile:      e.str("KAFKA_PRIVATE_KEY_PATH"),
			CAFile:       e.str("KAFKA_CA_PATH"),
			WriteTimeout: e.dur("KAFKA_WRITE_TIMEOUT"),
		},
		Publish: PublishConfig{
			InitialInterval: e.dur("PUBLISH_RETRY_INITIAL"),
			Multiplier:      e.float("PUBLISH_RETRY_MULTIPLIER"),
			MaxInterval:     e.dur("PUBLISH_RETRY_MAX_INTERVAL"),
			MaxAttempts:     e.int("PUBLISH_RETRY_MAX_ATTEMPTS"),
		},
		Consistency: ConsistencyConfig{
			PollInterval: e.dur("CONSISTENCY_POLL_INTERVAL"),
			PollAttempts: e.int("CONSISTENCY_POLL_ATTEMPTS"),
		},

		// Rate limiting
		RateRPS:   e.float("RATE_RPS"),
		RateBurst: e.int("RATE_BURST"),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS")),
		},
		Security: SecurityConfig{
			EnableHSTS: e.bool("ENABLE_HSTS"),
			HSTSMaxAge: e.dur("HSTS_MAX_AGE"),
		},

		// Idempotency
		DBPath:         e.str("DB_PATH"),
		IdempotencyTTL: e.dur("IDEMPOTENCY_TTL"),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     e.bool("OTEL_ENABLED"),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:    e.bool("OTEL_EXPORTER_OTLP_INSECURE"),
			ServiceName: e.str("OTEL_SERVICE_NAME"),
			SampleRatio: e.float("OTEL_TRACES_SAMPLER_ARG"),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.Kafka.Topic = strings.TrimSpace(cfg.Kafka.Topic)

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	for name, raw := range map[string]string{
		"SAF_URL":            cfg.Upstream.SafURL,
		"DOKARKIV_URL":       cfg.Upstream.DokarkivURL,
		"DOKARKIV_PROXY_URL": cfg.Upstream.DokarkivProxyURL,
		"OPPGAVE_URL":        cfg.Upstream.OppgaveURL,
		"DOKDIST_URL":        cfg.Upstream.DokdistURL,
		"PERSON_URL":         cfg.Upstream.PersonURL,
		"ORGANISASJON_URL":   cfg.Upstream.OrganisasjonURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return cfg, fmt.Errorf("%s must be an absolute URL", name)
		}
	}
	if cfg.Upstream.Timeout <= 0 {
		return cfg, errors.New("UPSTREAM_TIMEOUT must be > 0")
	}
	if cfg.Upstream.OrganisasjonCacheTTL < 0 {
		return cfg, errors.New("ORGANISASJON_CACHE_TTL must be >= 0")
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return cfg, errors.New("KAFKA_BROKERS must not be empty")
	}
	if cfg.Kafka.Topic == "" {
		return cfg, errors.New("TOPIC_JOURNALPOST must not be empty")
	}
	if (cfg.Kafka.CertFile == "") != (cfg.Kafka.KeyFile == "") {
		return cfg, errors.New("KAFKA_CERTIFICATE_PATH and KAFKA_PRIVATE_KEY_PATH must be set together")
	}
	if cfg.Publish.InitialInterval <= 0 || cfg.Publish.MaxInterval < cfg.Publish.InitialInterval {
		return cfg, errors.New("PUBLISH_RETRY_INITIAL must be > 0 and <= PUBLISH_RETRY_MAX_INTERVAL")
	}
	if cfg.Publish.Multiplier < 1 {
		return cfg, errors.New("PUBLISH_RETRY_MULTIPLIER must be >= 1")
	}
	if cfg.Publish.MaxAttempts < 1 {
		return cfg, errors.New("PUBLISH_RETRY_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.Consistency.PollInterval <= 0 || cfg.Consistency.PollAttempts < 1 {
		return cfg, errors.New("CONSISTENCY_POLL_INTERVAL must be > 0 and CONSISTENCY_POLL_ATTEMPTS >= 1")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers ----

// env reads keys through a private viper instance. Unparseable values fall
// back to the default instead of failing the load.
type env struct {
	v *viper.Viper
}

func newEnv() env {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()
	return env{v: v}
}

func (e env) str(k string) string {
	return strings.TrimSpace(e.v.GetString(k))
}

func (e env) float(k string) float64 {
	if f, err := strconv.ParseFloat(e.str(k), 64); err == nil {
		return f
	}
	return defaults[k].(float64)
}

func (e env) int(k string) int {
	if i, err := strconv.Atoi(e.str(k)); err == nil {
		return i
	}
	return defaults[k].(int)
}

func (e env) bool(k string) bool {
	switch strings.ToLower(e.str(k)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return defaults[k].(bool)
}

func (e env) dur(k string) time.Duration {
	if d, err := time.ParseDuration(e.str(k)); err == nil {
		return d
	}
	return defaults[k].(time.Duration)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
