// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, persistence, email notification, authentication, idempotency,
// rate limiting, logging and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
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
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-lead-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and locates the leads database.
type DBConfig struct {
	Driver      string // sqlite|postgres
	Path        string // SQLite file path
	DSN         string // Postgres DSN
	UniqueEmail bool   // enforce one lead per email address
}

// EmailConfig configures the best-effort operator notification.
type EmailConfig struct {
	Provider string        // resend|sendgrid|mailgun|ses|none
	APIKey   string        // provider API key (resend, sendgrid, mailgun)
	Domain   string        // mailgun sending domain
	BaseURL  string        // provider API base override; empty uses the provider default
	From     string        // sender address
	FromName string        // sender display name
	To       []string      // operator recipients
	Brand    string        // used in the subject line
	Timezone string        // IANA zone for the "Submitted" timestamp
	Timeout  time.Duration // per-send deadline
}

// AuthConfig configures the service-level bearer credential.
type AuthConfig struct {
	BearerToken string // static token; empty disables
	JWTSecret   string // HS256 secret; takes precedence over BearerToken
	TableAPIKey string // apikey header required by the table API; empty disables
}

// ContactConfig is the manual fallback channel shown in error messages.
type ContactConfig struct {
	Email string
	Phone string
}

// LogConfig configures the zerolog sink.
type LogConfig struct {
	Level      string // debug|info|warn|error|fatal|panic
	Pretty     bool   // pretty console logs in dev
	File       string // optional rotating file sink
	MaxSizeMB  int
	MaxBackups int
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
	Log            LogConfig
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Leads
	DB               DBConfig
	StrictValidation bool // enforce minimum name/message length server-side
	Email            EmailConfig
	Auth             AuthConfig
	Contact          ContactConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL     time.Duration // how long a given Idempotency-Key is valid
	IdempotencyBackend string        // db|redis
	RedisAddr          string
	RedisPassword      string
	RedisDB            int

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 45*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		Log: LogConfig{
			Level:      strings.ToLower(getenv("LOG_LEVEL", "info")),
			Pretty:     getbool("LOG_PRETTY", false),
			File:       getenv("LOG_FILE", ""),
			MaxSizeMB:  getint("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getint("LOG_MAX_BACKUPS", 5),
		},
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Leads
		DB: DBConfig{
			Driver:      strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:        getenv("DB_PATH", "leads.db"),
			DSN:         getenv("DB_DSN", ""),
			UniqueEmail: getbool("LEADS_UNIQUE_EMAIL", false),
		},
		StrictValidation: getbool("LEADS_STRICT_VALIDATION", true),
		Email: EmailConfig{
			Provider: strings.ToLower(getenv("EMAIL_PROVIDER", "resend")),
			APIKey:   getenv("EMAIL_API_KEY", os.Getenv("RESEND_API_KEY")),
			Domain:   getenv("EMAIL_DOMAIN", ""),
			BaseURL:  getenv("EMAIL_BASE_URL", ""),
			From:     getenv("EMAIL_FROM", "noreply@lambagentic.com"),
			FromName: getenv("EMAIL_FROM_NAME", "LambAgentic"),
			To:       splitCSV(getenv("EMAIL_TO", "info@lambagentic.com")),
			Brand:    getenv("NOTIFY_BRAND", "LambAgentic"),
			Timezone: getenv("NOTIFY_TIMEZONE", "UTC"),
			Timeout:  getdur("EMAIL_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			BearerToken: getenv("AUTH_BEARER_TOKEN", ""),
			JWTSecret:   getenv("AUTH_JWT_SECRET", ""),
			TableAPIKey: getenv("TABLE_API_KEY", ""),
		},
		Contact: ContactConfig{
			Email: getenv("CONTACT_EMAIL", "info@lambagentic.com"),
			Phone: getenv("CONTACT_PHONE", "+1 800 555 0199"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 1.0),
		RateBurst: getint("RATE_BURST", 5),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL:     getdur("IDEMPOTENCY_TTL", 24*time.Hour),
		IdempotencyBackend: strings.ToLower(getenv("IDEMPOTENCY_BACKEND", "db")),
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getint("REDIS_DB", 0),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-lead-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.Log.Level == "warning" {
		cfg.Log.Level = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}

	// --- validation ---
	switch cfg.Log.Level {
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
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DB_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	switch cfg.Email.Provider {
	case "resend", "sendgrid", "mailgun", "ses", "none":
	default:
		return cfg, errors.New("EMAIL_PROVIDER must be one of: resend, sendgrid, mailgun, ses, none")
	}
	if cfg.Email.Provider == "mailgun" && cfg.Email.APIKey != "" && cfg.Email.Domain == "" {
		return cfg, errors.New("EMAIL_DOMAIN is required when EMAIL_PROVIDER=mailgun")
	}
	if cfg.Email.Timeout <= 0 {
		return cfg, errors.New("EMAIL_TIMEOUT must be > 0")
	}
	if _, err := time.LoadLocation(cfg.Email.Timezone); err != nil {
		return cfg, errors.New("NOTIFY_TIMEZONE must be a valid IANA time zone")
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
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	switch cfg.IdempotencyBackend {
	case "db", "redis":
	default:
		return cfg, errors.New("IDEMPOTENCY_BACKEND must be one of: db, redis")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// EmailEnabled reports whether a notification provider can be constructed.
// SES authenticates through the AWS credential chain and needs no API key.
func (c Config) EmailEnabled() bool { return c.Email.Enabled() }

// Enabled reports whether this email configuration can send anything.
func (e EmailConfig) Enabled() bool {
	switch e.Provider {
	case "none":
		return false
	case "ses":
		return len(e.To) > 0
	default:
		return e.APIKey != "" && len(e.To) > 0
	}
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
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
