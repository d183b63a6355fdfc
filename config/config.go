package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port         string
	AWSRegion    string
	S3Bucket     string
	JWTSecret    string
	TokenExpiry  time.Duration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ClientURL    string
}

// Load reads the configuration from environment variables, applying defaults
// where the variable is unset.
func Load() Config {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		AWSRegion:    os.Getenv("AWS_REGION"),
		S3Bucket:     os.Getenv("S3_BUCKET_NAME"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenExpiry:  72 * time.Hour,
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     587,
		SMTPUser:     os.Getenv("EMAIL_USER"),
		SMTPPassword: os.Getenv("EMAIL_PASS"),
		ClientURL:    getEnv("CLIENT_URL", "http://localhost:3000"),
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.SMTPPort = p
		}
	}
	if v := os.Getenv("TOKEN_EXPIRY_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			cfg.TokenExpiry = time.Duration(h) * time.Hour
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
