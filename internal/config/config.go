package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Provider ProviderConfig
	Usage    UsageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	GenerationTopic    string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host             string
	Port             int
	Email            string
	Password         string
	SenderEmail      string
	DefaultRecipient string
}

// ProviderConfig selects and configures the automatic annotation backend.
type ProviderConfig struct {
	Type    string // currently "google"
	BaseURL string
	APIKey  string
}

// UsageConfig caps automatic generations per organization per month.
type UsageConfig struct {
	MonthlyGenerationLimit int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			GenerationTopic:    getEnv("GENERATION_TOPIC_NAME", "GENERATE_ANNOTATION"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:             getEnv("SMTP_HOST", ""),
			Port:             getEnvAsInt("SMTP_PORT", 587),
			Email:            getEnv("SMTP_EMAIL", ""),
			Password:         getEnv("SMTP_PASSWORD", ""),
			SenderEmail:      getEnv("SMTP_SENDER_EMAIL", "noreply@localhost"),
			DefaultRecipient: getEnv("NOTIFY_DEFAULT_RECIPIENT", ""),
		},
		Provider: ProviderConfig{
			Type:    getEnv("ANNOTATION_PROVIDER", "google"),
			BaseURL: getEnv("ANNOTATION_PROVIDER_BASE_URL", "https://speech.googleapis.com"),
			APIKey:  getEnv("ANNOTATION_PROVIDER_API_KEY", ""),
		},
		Usage: UsageConfig{
			MonthlyGenerationLimit: getEnvAsInt("MONTHLY_GENERATION_LIMIT", 500),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
