package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	cfg := MustLoad()
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("API_BASE_PATH default expected '/api/v1', got %q", cfg.APIBasePath)
	}
}

// --- Load success + normalization + parsing ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.Path != "leads.db" || cfg.DB.UniqueEmail {
		t.Fatalf("db defaults unexpected: %+v", cfg.DB)
	}
	if !cfg.StrictValidation {
		t.Fatalf("strict validation should default on")
	}
	if cfg.Email.Provider != "resend" || cfg.Email.Timeout != 10*time.Second ||
		!reflect.DeepEqual(cfg.Email.To, []string{"info@lambagentic.com"}) {
		t.Fatalf("email defaults unexpected: %+v", cfg.Email)
	}
	if cfg.IdempotencyBackend != "db" || cfg.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("idempotency defaults unexpected: %q %v", cfg.IdempotencyBackend, cfg.IdempotencyTTL)
	}
	if cfg.Contact.Email == "" || cfg.Contact.Phone == "" {
		t.Fatalf("contact fallback must have defaults: %+v", cfg.Contact)
	}
}

func TestLoad_Success_Overrides(t *testing.T) {
	// Server
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("LOG_FILE", "/tmp/leads.log")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v2/")

	// Leads
	t.Setenv("DB_DRIVER", "postgresql") // alias
	t.Setenv("DB_DSN", "postgres://u:p@localhost/leads")
	t.Setenv("LEADS_UNIQUE_EMAIL", "true")
	t.Setenv("LEADS_STRICT_VALIDATION", "off")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("EMAIL_API_KEY", "sg-key")
	t.Setenv("EMAIL_TO", " ops@example.com , sales@example.com ")
	t.Setenv("NOTIFY_TIMEZONE", "Europe/London")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TABLE_API_KEY", "anon")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "nope")

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Idempotency
	t.Setenv("IDEMPOTENCY_TTL", "48h")
	t.Setenv("IDEMPOTENCY_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.Log.Level != "warn" || !cfg.Log.Pretty || cfg.Log.File != "/tmp/leads.log" ||
		!cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v2" {
		t.Fatalf("logging/docs unexpected: %+v", cfg.Log)
	}
	if cfg.DB.Driver != "postgres" || !cfg.DB.UniqueEmail || cfg.StrictValidation {
		t.Fatalf("leads fields unexpected: %+v strict=%v", cfg.DB, cfg.StrictValidation)
	}
	if cfg.Email.Provider != "sendgrid" || cfg.Email.APIKey != "sg-key" ||
		!reflect.DeepEqual(cfg.Email.To, []string{"ops@example.com", "sales@example.com"}) ||
		cfg.Email.Timezone != "Europe/London" {
		t.Fatalf("email unexpected: %+v", cfg.Email)
	}
	if !cfg.EmailEnabled() {
		t.Fatalf("email should be enabled with key + recipients")
	}
	if cfg.Auth.JWTSecret != "s3cret" || cfg.Auth.TableAPIKey != "anon" {
		t.Fatalf("auth unexpected: %+v", cfg.Auth)
	}
	if cfg.RateRPS != 1.0 || cfg.RateBurst != 5 {
		t.Fatalf("rate limiting unexpected: %v %v", cfg.RateRPS, cfg.RateBurst)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}
	if cfg.IdempotencyTTL != 48*time.Hour || cfg.IdempotencyBackend != "redis" ||
		cfg.RedisAddr != "redis:6379" || cfg.RedisDB != 2 {
		t.Fatalf("idempotency unexpected: %+v", cfg)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestEmailEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  EmailConfig
		want bool
	}{
		{"none provider", EmailConfig{Provider: "none", APIKey: "k", To: []string{"a@b.c"}}, false},
		{"resend without key", EmailConfig{Provider: "resend", To: []string{"a@b.c"}}, false},
		{"resend with key", EmailConfig{Provider: "resend", APIKey: "k", To: []string{"a@b.c"}}, true},
		{"no recipients", EmailConfig{Provider: "resend", APIKey: "k"}, false},
		{"ses uses aws chain", EmailConfig{Provider: "ses", To: []string{"a@b.c"}}, true},
	}
	for _, tc := range cases {
		if got := (Config{Email: tc.cfg}).EmailEnabled(); got != tc.want {
			t.Fatalf("%s: EmailEnabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// --- Load validations (each case triggers exactly one validation error) ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"invalid LOG_LEVEL", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"empty PORT via spaces", map[string]string{"PORT": "   "}, "PORT must not be empty"},
		{"non-positive timeouts", map[string]string{"READ_TIMEOUT": "0s"}, "timeouts must be positive"},
		{"max header bytes <= 0", map[string]string{"MAX_HEADER_BYTES": "0"}, "MAX_HEADER_BYTES"},
		{"empty DB_PATH", map[string]string{"DB_PATH": "   "}, "DB_PATH must not be empty"},
		{"postgres without dsn", map[string]string{"DB_DRIVER": "postgres"}, "DB_DSN is required"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"unknown email provider", map[string]string{"EMAIL_PROVIDER": "pigeon"}, "EMAIL_PROVIDER"},
		{"mailgun without domain", map[string]string{"EMAIL_PROVIDER": "mailgun", "EMAIL_API_KEY": "k"}, "EMAIL_DOMAIN"},
		{"email timeout", map[string]string{"EMAIL_TIMEOUT": "0s"}, "EMAIL_TIMEOUT"},
		{"bad timezone", map[string]string{"NOTIFY_TIMEZONE": "Mars/Olympus"}, "NOTIFY_TIMEZONE"},
		{"rate rps negative", map[string]string{"RATE_RPS": "-1"}, "RATE_RPS"},
		{"rate burst < 1", map[string]string{"RATE_BURST": "0"}, "RATE_BURST"},
		{"hsts max age negative", map[string]string{"HSTS_MAX_AGE": "-1s"}, "HSTS_MAX_AGE"},
		{"idempotency ttl non-positive", map[string]string{"IDEMPOTENCY_TTL": "0s"}, "IDEMPOTENCY_TTL"},
		{"idempotency backend", map[string]string{"IDEMPOTENCY_BACKEND": "memcached"}, "IDEMPOTENCY_BACKEND"},
		{"otel sample ratio out of range", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}, "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

// --- helpers ---

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}
	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}
	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		t.Setenv("B_T", v)
		if !getbool("B_T", false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for _, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		t.Setenv("B_F", v)
		if getbool("B_F", true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: got %#v", got)
	}
	if normalizeBasePath("") != "/" {
		t.Fatalf("normalizeBasePath empty -> '/' failed")
	}
	if normalizeBasePath("v1") != "/v1" {
		t.Fatalf("normalizeBasePath missing leading slash failed")
	}
	if normalizeBasePath("/v1/") != "/v1" {
		t.Fatalf("normalizeBasePath trailing slash trim failed")
	}
	if normalizeBasePath(" / ") != "/" {
		t.Fatalf("normalizeBasePath whitespace failed")
	}
}

// Ensure tests don't pick up a developer's shell env.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_PATH", "DB_DSN", "EMAIL_PROVIDER", "EMAIL_API_KEY",
		"RESEND_API_KEY", "EMAIL_TO", "NOTIFY_TIMEZONE", "IDEMPOTENCY_BACKEND", "LOG_LEVEL"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
