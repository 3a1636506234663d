package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"tripchat/application/ports"
	"tripchat/domain/chat"
	apperrors "tripchat/pkg/errors"
)

// ConversationRepository implements ports.ConversationRepository using
// DynamoDB. Conversations are single items with their messages embedded as a
// list attribute; a GSI keyed by the conversation ID supports lookups that
// arrive without the owner's partition key.
type ConversationRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.ConversationRepository {
	return &ConversationRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// conversationItem represents the DynamoDB item structure for a conversation
type conversationItem struct {
	PK             string         `dynamodbav:"PK"`
	SK             string         `dynamodbav:"SK"`
	GSI1PK         string         `dynamodbav:"GSI1PK"`
	GSI1SK         string         `dynamodbav:"GSI1SK"`
	EntityType     string         `dynamodbav:"EntityType"`
	ConversationID string         `dynamodbav:"ConversationID"`
	UserID         string         `dynamodbav:"UserID"`
	Title          string         `dynamodbav:"Title"`
	StartedAt      string         `dynamodbav:"StartedAt"`
	Messages       []chat.Message `dynamodbav:"Messages"`
}

func ownerKey(userID string) string {
	return fmt.Sprintf("USER#%s", userID)
}

func convKey(conversationID string) string {
	return fmt.Sprintf("CONV#%s", conversationID)
}

// Create stores a new conversation document
func (r *ConversationRepository) Create(ctx context.Context, conv *chat.Conversation) error {
	item := conversationItem{
		PK:             ownerKey(conv.UserID),
		SK:             convKey(conv.ID),
		GSI1PK:         convKey(conv.ID),
		GSI1SK:         "METADATA",
		EntityType:     "CONVERSATION",
		ConversationID: conv.ID,
		UserID:         conv.UserID,
		Title:          conv.Title,
		StartedAt:      conv.StartedAt.Format(time.RFC3339),
		Messages:       conv.Messages,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	// MarshalMap drops empty lists; an empty transcript must still round-trip
	// as a list.
	if len(conv.Messages) == 0 {
		av["Messages"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save conversation to DynamoDB",
			zap.Error(err),
			zap.String("conversationID", conv.ID),
		)
		return apperrors.NewDatabaseError("create conversation", err)
	}

	return nil
}

// FindByID looks a conversation up through the GSI by its identifier alone
func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*chat.Conversation, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(convKey(id))).
		And(expression.Key("GSI1SK").Equal(expression.Value("METADATA")))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find conversation", err)
	}
	if len(out.Items) == 0 {
		return nil, apperrors.NewNotFoundError("conversation")
	}

	return unmarshalConversation(out.Items[0])
}

// ListByUser returns every conversation owned by userID
func (r *ConversationRepository) ListByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(ownerKey(userID))).
		And(expression.Key("SK").BeginsWith("CONV#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var convs []chat.Conversation
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewDatabaseError("list conversations", err)
		}
		for _, raw := range page.Items {
			conv, err := unmarshalConversation(raw)
			if err != nil {
				return nil, err
			}
			convs = append(convs, *conv)
		}
	}

	return convs, nil
}

// AppendMessage adds one message to the end of the embedded transcript
func (r *ConversationRepository) AppendMessage(ctx context.Context, userID, conversationID string, msg chat.Message) error {
	av, err := attributevalue.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(userID, conversationID),
		UpdateExpression: aws.String(
			"SET Messages = list_append(if_not_exists(Messages, :empty), :msg)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":msg":   &types.AttributeValueMemberL{Value: []types.AttributeValue{av}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		r.logger.Error("Failed to append message",
			zap.Error(err),
			zap.String("conversationID", conversationID),
		)
		return apperrors.NewDatabaseError("append message", err)
	}

	return nil
}

// UpdateTitle rewrites the conversation title
func (r *ConversationRepository) UpdateTitle(ctx context.Context, userID, conversationID, title string) error {
	return r.setAttribute(ctx, userID, conversationID, "Title", title, "update title")
}

// Touch rewrites the start timestamp used by the staleness sweep
func (r *ConversationRepository) Touch(ctx context.Context, userID, conversationID string, startedAt time.Time) error {
	return r.setAttribute(ctx, userID, conversationID, "StartedAt", startedAt.Format(time.RFC3339), "touch conversation")
}

// Delete removes the conversation item, reporting whether it existed
func (r *ConversationRepository) Delete(ctx context.Context, userID, conversationID string) (bool, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          r.key(userID, conversationID),
		ReturnValues: types.ReturnValueAllOld,
	}

	out, err := r.client.DeleteItem(ctx, input)
	if err != nil {
		return false, apperrors.NewDatabaseError("delete conversation", err)
	}

	return len(out.Attributes) > 0, nil
}

// ListAll scans the table for every conversation item. Used only by the
// startup staleness sweep.
func (r *ConversationRepository) ListAll(ctx context.Context) ([]chat.Conversation, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("CONVERSATION"))

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var convs []chat.Conversation
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan conversations", err)
		}
		for _, raw := range page.Items {
			conv, err := unmarshalConversation(raw)
			if err != nil {
				return nil, err
			}
			convs = append(convs, *conv)
		}
	}

	return convs, nil
}

func (r *ConversationRepository) key(userID, conversationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: ownerKey(userID)},
		"SK": &types.AttributeValueMemberS{Value: convKey(conversationID)},
	}
}

func (r *ConversationRepository) setAttribute(ctx context.Context, userID, conversationID, attr string, value string, op string) error {
	update := expression.Set(expression.Name(attr), expression.Value(value))
	cond := expression.AttributeExists(expression.Name("PK"))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(userID, conversationID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		r.logger.Error("Failed to update conversation",
			zap.Error(err),
			zap.String("operation", op),
			zap.String("conversationID", conversationID),
		)
		return apperrors.NewDatabaseError(op, err)
	}

	return nil
}

func unmarshalConversation(raw map[string]types.AttributeValue) (*chat.Conversation, error) {
	var item conversationItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	startedAt, err := time.Parse(time.RFC3339, item.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse conversation timestamp: %w", err)
	}

	messages := item.Messages
	if messages == nil {
		messages = []chat.Message{}
	}

	return &chat.Conversation{
		ID:        item.ConversationID,
		UserID:    item.UserID,
		Title:     item.Title,
		StartedAt: startedAt,
		Messages:  messages,
	}, nil
}
