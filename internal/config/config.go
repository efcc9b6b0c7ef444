package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	OTPExpiry time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users     string
	EmailOTPs string
	Items     string
}

// IsProduction reports whether the app runs in a production-grade deployment.
// Cookie security attributes key off this.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:     getEnv("DYNAMO_TABLE_USERS", "users"),
			EmailOTPs: getEnv("DYNAMO_TABLE_EMAIL_OTPS", "email_otps"),
			Items:     getEnv("DYNAMO_TABLE_ITEMS", "items"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "campus-market-images"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
		AccessTokenExpiry:  getEnvDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenExpiry: getEnvDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),

		OTPExpiry: getEnvDuration("OTP_EXPIRY", 5*time.Minute),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@campusmarket.example"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
