// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, storage, the WhatsApp Cloud API and
// extraction credentials, authentication, deduplication and observability.
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

// DBConfig selects the storage backend.
type DBConfig struct {
	Driver string // sqlite|postgres
	Path   string // SQLite path
	DSN    string // Postgres connection string
}

// WhatsAppConfig holds the Cloud API settings used by the webhook and the
// outbound template client.
type WhatsAppConfig struct {
	VerifyToken  string        // WHATSAPP_VERIFY_TOKEN, compared on GET /webhook
	AccessToken  string        // WHATSAPP_ACCESS_TOKEN, Graph API bearer token
	APIBase      string        // WHATSAPP_API_BASE
	APIVersion   string        // WHATSAPP_API_VERSION (e.g. "v21.0")
	TemplateName string        // WHATSAPP_TEMPLATE_NAME, welcome template
	TemplateLang string        // WHATSAPP_TEMPLATE_LANG
	Timeout      time.Duration // per outbound call
}

// ExtractionConfig holds the settings of the lead-attribute extractor.
type ExtractionConfig struct {
	APIKey  string        // GEMINI_API_KEY; empty disables extraction
	Model   string        // GEMINI_MODEL
	Timeout time.Duration // per extraction call
	Window  int           // prior messages included in the prompt
}

// AuthConfig holds the dashboard authentication settings.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AllowedEmails []string // empty allows every registered user to log in
}

// RedisConfig configures the optional Redis used for webhook deduplication.
type RedisConfig struct {
	Addr     string
	Password string
	TLS      bool
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

	// Storage
	DB DBConfig

	// Leads
	DefaultLeadSource    string // source for leads created through POST /leads
	DefaultBusinessPhone string // business number for manually created leads

	// Integrations
	WhatsApp   WhatsAppConfig
	Extraction ExtractionConfig
	Auth       AuthConfig

	// Webhook deduplication
	Redis     RedisConfig
	DedupeTTL time.Duration

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

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
		WriteTimeout:      getdur("WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Storage
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "leads.db"),
			DSN:    getenv("DATABASE_URL", ""),
		},

		// Leads
		DefaultLeadSource:    getenv("LEAD_DEFAULT_SOURCE", "website"),
		DefaultBusinessPhone: getenv("LEAD_DEFAULT_BUSINESS_PHONE", ""),

		// WhatsApp Cloud API
		WhatsApp: WhatsAppConfig{
			VerifyToken:  getenv("WHATSAPP_VERIFY_TOKEN", ""),
			AccessToken:  getenv("WHATSAPP_ACCESS_TOKEN", ""),
			APIBase:      strings.TrimRight(getenv("WHATSAPP_API_BASE", "https://graph.facebook.com"), "/"),
			APIVersion:   getenv("WHATSAPP_API_VERSION", "v21.0"),
			TemplateName: getenv("WHATSAPP_TEMPLATE_NAME", "welcome_message"),
			TemplateLang: getenv("WHATSAPP_TEMPLATE_LANG", "en"),
			Timeout:      getdur("WHATSAPP_TIMEOUT", 10*time.Second),
		},

		// Extraction (Gemini)
		Extraction: ExtractionConfig{
			APIKey:  getenv("GEMINI_API_KEY", ""),
			Model:   getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout: getdur("EXTRACTION_TIMEOUT", 15*time.Second),
			Window:  getint("EXTRACTION_WINDOW", 10),
		},

		// Auth
		Auth: AuthConfig{
			JWTSecret:     getenv("JWT_SECRET", ""),
			TokenTTL:      getdur("JWT_TTL", 30*24*time.Hour),
			AllowedEmails: lowerAll(splitCSV(getenv("AUTH_ALLOWED_EMAILS", ""))),
		},

		// Deduplication
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			TLS:      getbool("REDIS_TLS", false),
		},
		DedupeTTL: getdur("DEDUPE_TTL", 72*time.Hour),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

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
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
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
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return cfg, errors.New("DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.WhatsApp.Timeout <= 0 || cfg.Extraction.Timeout <= 0 {
		return cfg, errors.New("WHATSAPP_TIMEOUT and EXTRACTION_TIMEOUT must be positive durations")
	}
	if cfg.Extraction.Window < 0 {
		return cfg, errors.New("EXTRACTION_WINDOW must be >= 0")
	}
	if strings.TrimSpace(cfg.WhatsApp.TemplateName) == "" {
		return cfg, errors.New("WHATSAPP_TEMPLATE_NAME must not be empty")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("JWT_TTL must be > 0")
	}
	if cfg.DedupeTTL <= 0 {
		return cfg, errors.New("DEDUPE_TTL must be > 0")
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
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
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

func lowerAll(in []string) []string {
	for i, s := range in {
		in[i] = strings.ToLower(s)
	}
	return in
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
