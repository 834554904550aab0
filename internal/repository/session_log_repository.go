package repository

import (
	"context"
	"fmt"
	"time"
	"word-progress/internal/models"
	"word-progress/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// Session table layout: pk userId, sk "<createdAt UTC>#<id>" (see models.SessionSortKey).
type sessionLogRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
}

func NewSessionLogRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string) utils.SessionLogReader {
	return &sessionLogRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
	}
}

func (r *sessionLogRepository) QueryByOwner(ctx context.Context, userID string, since time.Time) ([]models.SessionLogEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("userId = :userId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
	}
	if !since.IsZero() {
		input.KeyConditionExpression = aws.String("userId = :userId AND sk >= :since")
		input.ExpressionAttributeValues[":since"] = &types.AttributeValueMemberS{Value: since.UTC().Format(models.SessionSortKeyLayout)}
	}

	entries := []models.SessionLogEntry{}
	paginator := dynamodb.NewQueryPaginator(r.dynamodb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.WithError(err).WithField("userId", userID).Error("Failed to query session log from DynamoDB")
			return nil, utils.NewStoreUnavailable("query session log", err)
		}

		var pageEntries []models.SessionLogEntry
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &pageEntries); err != nil {
			r.logger.WithError(err).WithField("userId", userID).Error("Failed to unmarshal session log entries")
			return nil, utils.NewStoreUnavailable("query session log", fmt.Errorf("failed to unmarshal session log: %w", err))
		}
		entries = append(entries, pageEntries...)
	}

	r.logger.WithFields(logrus.Fields{
		"userId": userID,
		"since":  since,
		"count":  len(entries),
	}).Debug("Successfully queried session log")

	return entries, nil
}

func (r *sessionLogRepository) QueryRecent(ctx context.Context, userID string, limit int) ([]models.SessionLogEntry, error) {
	if limit <= 0 {
		return []models.SessionLogEntry{}, nil
	}
	result, err := r.dynamodb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("userId = :userId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		r.logger.WithError(err).WithField("userId", userID).Error("Failed to query recent sessions from DynamoDB")
		return nil, utils.NewStoreUnavailable("query recent sessions", err)
	}

	entries := []models.SessionLogEntry{}
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		r.logger.WithError(err).WithField("userId", userID).Error("Failed to unmarshal recent sessions")
		return nil, utils.NewStoreUnavailable("query recent sessions", fmt.Errorf("failed to unmarshal session log: %w", err))
	}
	return entries, nil
}
