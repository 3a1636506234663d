package di

import (
	"context"

	"go.uber.org/zap"

	"tripchat/application/ports"
	"tripchat/application/services"
	"tripchat/infrastructure/config"
	"tripchat/pkg/amadeus"
	"tripchat/pkg/auth"
	"tripchat/pkg/n8n"
	"tripchat/pkg/nominatim"
)

// Container holds every wired dependency of the chat API binary
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Users         ports.UserRepository
	Conversations ports.ConversationRepository

	TokenIssuer *auth.TokenIssuer
	RateLimiter auth.RateLimiter

	Accounts     *services.AccountService
	ConvService  *services.ConversationService
	ChatService  *services.ChatService
	Amadeus      *amadeus.Client
	AmadeusCreds *amadeus.Credentials
	Nominatim    *nominatim.Client
	Engine       *n8n.Client
}

// InitializeContainer wires the full dependency graph for the chat API
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	dynamoClient := ProvideDynamoDBClient(awsCfg)

	users := ProvideUserRepository(dynamoClient, cfg, logger)
	convs := ProvideConversationRepository(dynamoClient, cfg, logger)

	tokens := ProvideTokenIssuer(cfg)
	engine := ProvideN8NClient(cfg, logger)

	convService := services.NewConversationService(convs, logger)
	creds := ProvideAmadeusCredentials(cfg, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Users:         users,
		Conversations: convs,
		TokenIssuer:   tokens,
		RateLimiter:   ProvideRateLimiter(),
		Accounts:      services.NewAccountService(users, tokens, logger),
		ConvService:   convService,
		ChatService:   services.NewChatService(convService, engine, logger),
		Amadeus:       ProvideAmadeusClient(creds, cfg, logger),
		AmadeusCreds:  creds,
		Nominatim:     ProvideNominatimClient(cfg, logger),
		Engine:        engine,
	}, nil
}

// ToolContainer holds the dependencies of the standalone tool-protocol server
type ToolContainer struct {
	Config       *config.Config
	Logger       *zap.Logger
	Amadeus      *amadeus.Client
	AmadeusCreds *amadeus.Credentials
	Nominatim    *nominatim.Client
}

// InitializeToolContainer wires the dependency graph for the tool server. It
// shares no state with the chat API; each process owns its own credential
// cache built from the same configuration.
func InitializeToolContainer(cfg *config.Config) (*ToolContainer, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	creds := ProvideAmadeusCredentials(cfg, logger)

	return &ToolContainer{
		Config:       cfg,
		Logger:       logger,
		Amadeus:      ProvideAmadeusClient(creds, cfg, logger),
		AmadeusCreds: creds,
		Nominatim:    ProvideNominatimClient(cfg, logger),
	}, nil
}
