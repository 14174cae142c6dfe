package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	Host           string   // Raw HOST env (e.g. https://api.mindfuljournal.app)
	AllowedHost    string   // Hostname only for strict host check (production only)
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	LogLevel       string

	UserStore    string // memory | postgres
	JournalStore string // memory | mongo
	SessionStore string // memory | redis
	PostgresURI  string
	MongoURI     string
	RedisURI     string

	SessionTTL        time.Duration
	SessionCookieName string
	Location          *time.Location // calendar days/months for analytics and default titles
	StaticDir         string
}

func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:3000")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = hostname(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL: invalid duration %q", os.Getenv("SESSION_TTL"))
	}

	loc := time.Local
	if tz := getEnv("TIMEZONE", ""); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("TIMEZONE: %w", err)
		}
	}

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		Environment:    env,
		Host:           host,
		AllowedHost:    allowedHost,
		AllowedOrigins: allowedOrigins,
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		UserStore:    strings.ToLower(getEnv("USER_STORE", DriverMemory)),
		JournalStore: strings.ToLower(getEnv("JOURNAL_STORE", DriverMemory)),
		SessionStore: strings.ToLower(getEnv("SESSION_STORE", DriverMemory)),
		PostgresURI:  getEnv("POSTGRES_URI", "postgres://localhost:5432/mindful_journal?sslmode=disable"),
		MongoURI:     getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/mindful_journal")),
		RedisURI:     getEnv("REDIS_URI", "redis://localhost:6379/0"),

		SessionTTL:        ttl,
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "mj_session"),
		Location:          loc,
		StaticDir:         getEnv("STATIC_DIR", ""),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.UserStore != DriverMemory && c.UserStore != DriverPostgres {
		return fmt.Errorf("USER_STORE: unsupported driver %q", c.UserStore)
	}
	if c.JournalStore != DriverMemory && c.JournalStore != DriverMongo {
		return fmt.Errorf("JOURNAL_STORE: unsupported driver %q", c.JournalStore)
	}
	if c.SessionStore != DriverMemory && c.SessionStore != DriverRedis {
		return fmt.Errorf("SESSION_STORE: unsupported driver %q", c.SessionStore)
	}
	return nil
}

// hostname strips scheme, path and port from a HOST value.
func hostname(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
