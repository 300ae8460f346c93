package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/qayimli/internal/accounts/mail"
	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
)

var ErrConfig = errors.New("app: invalid configuration")

// MaxJWTDurationDays caps the session lifetime at ten years.
const MaxJWTDurationDays = 3650

type Config struct {
	JWTKey          string   // Required: HMAC secret, at least 32 bytes
	JWTIssuer       string   // Required: iss claim of every token
	JWTAudience     string   // Required: aud claim of every token
	JWTDurationDays int      // Session token lifetime in days (default: 7)
	GoogleClientID  string   // Optional: enables Google sign-in when set
	FrontBaseURL    string   // Base of the emailed reset link (default: http://localhost:4200)
	DefaultRoles    []string // Roles given to new accounts (default: Member)
	LookupRoles     []string // Roles allowed to look up other users (default: Member, Admin)

	SMTP mail.SMTPConfig // Optional: emails are only logged when Host is empty

	DatabaseFile        string        // SQLite database file (default: ./accounts.db)
	PepperFile          string        // Pepper for password hashing (default: ./pepper)
	Env                 string        // dev, staging, prod (default: dev)
	LogLevel            string        // debug, info, warn, error (default: info)
	LogFormat           string        // json, text (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	TrustProxyHeaders   bool          // Key rate limits on X-Forwarded-For / X-Real-IP (default: false)
}

// LoadConfig reads the environment, seeded from ./.env when present.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTKey:          os.Getenv("JWT_KEY"),
		JWTIssuer:       os.Getenv("JWT_VALID_ISSUER"),
		JWTAudience:     os.Getenv("JWT_VALID_AUDIENCE"),
		JWTDurationDays: getEnvIntOrDefault("JWT_DURATION_IN_DAYS", 7),
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
		FrontBaseURL:    getEnvOrDefault("FRONT_BASE_URL", "http://localhost:4200"),
		DefaultRoles:    getEnvListOrDefault("DEFAULT_ROLES", []string{"Member"}),
		LookupRoles:     getEnvListOrDefault("USER_LOOKUP_ROLES", []string{"Member", "Admin"}),
		SMTP: mail.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvIntOrDefault("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "accounts.db"),
		PepperFile:          getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		TrustProxyHeaders:   getEnvBoolOrDefault("TRUST_PROXY_HEADERS", false),
	}
}

// Validate reports every missing or unusable setting at once.
func (c Config) Validate() error {
	var errs []error

	if err := SigningKeys(c).Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.JWTDurationDays <= 0 || c.JWTDurationDays > MaxJWTDurationDays {
		errs = append(errs, fmt.Errorf("%w: JWT_DURATION_IN_DAYS must be between 1 and %d", ErrConfig, MaxJWTDurationDays))
	}
	if c.FrontBaseURL == "" {
		errs = append(errs, fmt.Errorf("%w: FRONT_BASE_URL is empty", ErrConfig))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: PORT %d out of range", ErrConfig, c.Port))
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		errs = append(errs, fmt.Errorf("%w: SMTP_FROM is required with SMTP_HOST", ErrConfig))
	}

	return errors.Join(errs...)
}

// SessionTTL is the configured session token lifetime.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTDurationDays) * 24 * time.Hour
}

// SigningKeys builds the immutable key configuration for token signing and
// verification.
func SigningKeys(c Config) jwtx.KeyConfig {
	return jwtx.KeyConfig{
		Secret:   []byte(c.JWTKey),
		Issuer:   c.JWTIssuer,
		Audience: c.JWTAudience,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
