package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int
	LogMode   string

	DBDriver   string // postgres or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string
	Password        string // SMTP Password

	StripeWebhookSecret string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	UploadDir           string // local image storage when Cloudinary is not configured

	VerifyCodeTTL         time.Duration
	VerifyCodeMaxPerDay   int
	VerifyCodeMaxAttempts int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),
		LogMode:   getEnv("LOG_MODE", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "learnhub"),
		DBPort:     getEnv("DB_PORT", "5432"),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		EmailSender:     getEnv("EMAIL_SENDER", "defaultSecret"),
		EmailSenderName: getEnv("EMAIL_SENDER_NAME", "LearnHub"),
		Password:        getEnv("PASSWORD", "defaultSecret"),

		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		CloudinaryName:      getEnv("CLOUDINARY_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),

		VerifyCodeTTL:         time.Duration(getEnvInt("VERIFY_CODE_TTL_MINUTES", 10)) * time.Minute,
		VerifyCodeMaxPerDay:   getEnvInt("VERIFY_CODE_MAX_PER_DAY", 10),
		VerifyCodeMaxAttempts: getEnvInt("VERIFY_CODE_MAX_ATTEMPTS", 5),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is empty. Payment webhooks will be rejected.")
	}

	return AppConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
