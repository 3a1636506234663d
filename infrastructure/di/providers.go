package di

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"tripchat/application/ports"
	"tripchat/infrastructure/config"
	"tripchat/infrastructure/persistence/dynamodb"
	"tripchat/pkg/amadeus"
	"tripchat/pkg/auth"
	"tripchat/pkg/n8n"
	"tripchat/pkg/nominatim"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideUserRepository creates a user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideConversationRepository creates a conversation repository
func ProvideConversationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConversationRepository {
	return dynamodb.NewConversationRepository(
		client,
		cfg.DynamoDBTable,
		cfg.ConversationIndexName, // GSI for conversation lookups by ID
		logger,
	)
}

// ProvideTokenIssuer creates the JWT issuer shared by login and middleware
func ProvideTokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(cfg.JWTSecret)
}

// ProvideRateLimiter creates a per-IP token bucket limiter
func ProvideRateLimiter() auth.RateLimiter {
	return auth.NewTokenBucketLimiter(100, time.Second)
}

// ProvideAmadeusCredentials creates the shared Amadeus credential cache. Both
// binaries build their own instance from the same configuration surface.
func ProvideAmadeusCredentials(cfg *config.Config, logger *zap.Logger) *amadeus.Credentials {
	return amadeus.NewCredentials(amadeus.CredentialsConfig{
		ClientID:     cfg.AmadeusAPIKey,
		ClientSecret: cfg.AmadeusAPISecret,
		StaticToken:  cfg.AmadeusBearerToken,
		BaseURL:      cfg.AmadeusBaseURL,
	}, logger)
}

// ProvideAmadeusClient creates the Amadeus API client
func ProvideAmadeusClient(creds *amadeus.Credentials, cfg *config.Config, logger *zap.Logger) *amadeus.Client {
	return amadeus.NewClient(creds, cfg.AmadeusBaseURL, logger)
}

// ProvideN8NClient creates the workflow engine client
func ProvideN8NClient(cfg *config.Config, logger *zap.Logger) *n8n.Client {
	return n8n.NewClient(n8n.Config{
		WebhookURLMCP:   cfg.N8NWebhookURLMCP,
		WebhookURLNoMCP: cfg.N8NWebhookURLNoMCP,
		BaseURL:         cfg.N8NBaseURL,
		APIKey:          cfg.N8NAPIKey,
	}, logger)
}

// ProvideNominatimClient creates the geocoding client
func ProvideNominatimClient(cfg *config.Config, logger *zap.Logger) *nominatim.Client {
	return nominatim.NewClient(cfg.NominatimURL, logger)
}
