package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	// BaseURL prefixes the links sent in verification and reset emails.
	BaseURL            string
	VerificationExpiry time.Duration
	ResetExpiry        time.Duration

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ClientConfig configures teamctl and any other consumer of the team API.
type ClientConfig struct {
	APIURL    string
	Token     string
	TokenFile string
	Timeout   time.Duration
	Debug     bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:       getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 12*time.Hour),

		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		VerificationExpiry: getDuration("VERIFICATION_EXPIRY", 72*time.Hour),
		ResetExpiry:        getDuration("RESET_EXPIRY", time.Hour),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
	}, nil
}

func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		APIURL:    strings.TrimRight(getEnv("FLEETDESK_API_URL", "http://localhost:8080"), "/"),
		Token:     getEnv("FLEETDESK_TOKEN", ""),
		TokenFile: getEnv("FLEETDESK_TOKEN_FILE", defaultTokenFile()),
		Timeout:   getDuration("FLEETDESK_TIMEOUT", 15*time.Second),
		Debug:     getEnv("FLEETDESK_DEBUG", "") == "1",
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fleetdesk-token"
	}
	return dir + "/fleetdesk/token"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
