package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tripchat/application/ports"
	"tripchat/domain/chat"
	apperrors "tripchat/pkg/errors"
)

// UserRepository implements ports.UserRepository using DynamoDB
type UserRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	UserID       string `dynamodbav:"UserID"`
	Username     string `dynamodbav:"Username"`
	PasswordHash string `dynamodbav:"PasswordHash"`
}

func userKey(username string) string {
	return fmt.Sprintf("USERNAME#%s", username)
}

// Create stores a new user, failing on a duplicate username
func (r *UserRepository) Create(ctx context.Context, user *chat.User) error {
	item := userItem{
		PK:           userKey(user.Username),
		SK:           "PROFILE",
		EntityType:   "USER",
		UserID:       user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperrors.NewConflictError("username already exists")
		}
		r.logger.Error("Failed to save user to DynamoDB",
			zap.Error(err),
			zap.String("username", user.Username),
		)
		return apperrors.NewDatabaseError("create user", err)
	}

	return nil
}

// FindByUsername looks a user up by username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*chat.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKey(username)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	}

	out, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	if out.Item == nil {
		return nil, apperrors.NewNotFoundError("user")
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &chat.User{
		ID:           item.UserID,
		Username:     item.Username,
		PasswordHash: item.PasswordHash,
	}, nil
}
