package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration for both binaries. The two
// services read one configuration surface so the Amadeus credentials are
// defined exactly once.
type Config struct {
	// Server configuration
	ServerAddress     string
	ToolServerAddress string
	Environment       string
	LogLevel          string

	// AWS configuration
	AWSRegion             string
	DynamoDBTable         string
	ConversationIndexName string // GSI for conversation lookups by ID

	// Authentication
	JWTSecret string

	// Amadeus travel API
	AmadeusAPIKey      string
	AmadeusAPISecret   string
	AmadeusBaseURL     string
	AmadeusBearerToken string

	// Workflow engine
	N8NWebhookURLMCP   string
	N8NWebhookURLNoMCP string
	N8NBaseURL         string
	N8NAPIKey          string

	// Geocoding
	NominatimURL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:     getEnv("SERVER_ADDRESS", ":3001"),
		ToolServerAddress: getEnv("TOOL_SERVER_ADDRESS", ":3000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),

		AWSRegion:             getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable:         getEnv("DYNAMODB_TABLE", "tripchat"),
		ConversationIndexName: getEnv("CONVERSATION_INDEX_NAME", "ConversationIndex"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AmadeusAPIKey:      getEnv("AMADEUS_API_KEY", ""),
		AmadeusAPISecret:   getEnv("AMADEUS_API_SECRET", ""),
		AmadeusBaseURL:     getEnv("AMADEUS_URL", "https://test.api.amadeus.com"),
		AmadeusBearerToken: getEnv("AMADEUS_BEARER_TOKEN", ""),

		N8NWebhookURLMCP:   getEnv("N8N_WEBHOOK_URL_MCP", ""),
		N8NWebhookURLNoMCP: getEnv("N8N_WEBHOOK_URL_NO_MCP", ""),
		N8NBaseURL:         getEnv("N8N_BASE_URL", "http://localhost:5678"),
		N8NAPIKey:          getEnv("API_KEY_N8N", ""),

		NominatimURL: getEnv("NOMINATIM_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
