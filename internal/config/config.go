// Package config holds application configuration loaded once at startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is built in main and passed by reference into services.
// Nothing reads the environment after startup.
type Config struct {
	// Server settings
	Port string

	// Database
	DBUser                 string
	DBPass                 string
	DBName                 string
	InstanceConnectionName string // set on Cloud Run, selects the Cloud SQL socket
	UseMemoryStore         bool

	// Auth
	JWTKey        string
	JWTIssuer     string
	TokenLifetime time.Duration
	OTPLifetime   time.Duration

	// Seed
	AdminEmail    string
	AdminPassword string

	// Twilio (optional, log delivery is used when unset)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:                   getEnv("PORT", "8080"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPass:                 os.Getenv("DB_PASS"),
		DBName:                 getEnv("DB_NAME", "dealership"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		UseMemoryStore:         getBoolEnv("USE_MEMORY_STORE", false),
		JWTKey:                 getEnv("JWT_KEY", "dev-signing-key-change-in-production!"),
		JWTIssuer:              getEnv("JWT_ISSUER", "dealership-backend"),
		TokenLifetime:          getDurationEnv("TOKEN_LIFETIME", 3*time.Hour),
		OTPLifetime:            getDurationEnv("OTP_LIFETIME", 5*time.Minute),
		AdminEmail:             getEnv("ADMIN_EMAIL", "admin@dealership.com"),
		AdminPassword:          getEnv("ADMIN_PASSWORD", "Admin123!"),
		TwilioAccountSID:       os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:        os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:             os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

// TwilioConfigured reports whether SMS delivery credentials are present.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
