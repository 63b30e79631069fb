package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	WhatsApp  WhatsAppConfig
	AI        AIConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// WhatsAppConfig holds messaging provider configuration
type WhatsAppConfig struct {
	// AccessToken for the messaging provider API. Empty disables outbound relay.
	AccessToken string
	PhoneID     string
	APIBaseURL  string
}

// AIConfig holds settings for the conversational auto-responder
type AIConfig struct {
	GeminiAPIKey string
	Model        string
	// MinConfidence below which bot replies are suppressed and the
	// conversation is left pending for a human agent.
	MinConfidence float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	minConfidence := 0.6
	if v := os.Getenv("WA_BOT_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			minConfidence = f
		}
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "warehub"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		WhatsApp: WhatsAppConfig{
			AccessToken: os.Getenv("WA_ACCESS_TOKEN"),
			PhoneID:     os.Getenv("WA_PHONE_ID"),
			APIBaseURL:  getEnv("WA_API_BASE_URL", "https://graph.facebook.com/v19.0"),
		},
		AI: AIConfig{
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			MinConfidence: minConfidence,
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
