package repository

import (
	"context"
	"word-progress/internal/models"
	"word-progress/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

type reminderRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
}

func NewReminderRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string) utils.ReminderRepository {
	return &reminderRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
	}
}

// GetStreaksAtRisk returns records last seen on lastLoginDate that have a LINE user to notify.
func (r *reminderRepository) GetStreaksAtRisk(ctx context.Context, lastLoginDate models.Date) ([]models.ProgressRecord, error) {
	paginator := dynamodb.NewScanPaginator(r.dynamodb, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("lastLoginDate = :date AND attribute_exists(lineUserId)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":date": &types.AttributeValueMemberS{Value: lastLoginDate.String()},
		},
	})

	var records []models.ProgressRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan progress table from DynamoDB")
			return nil, utils.NewStoreUnavailable("scan streaks at risk", err)
		}

		for _, item := range page.Items {
			record, err := unmarshalProgress(item)
			if err != nil {
				r.logger.WithError(err).Error("Failed to unmarshal progress record, skipping")
				continue
			}
			records = append(records, *record)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"lastLoginDate": lastLoginDate.String(),
		"count":         len(records),
	}).Info("Successfully retrieved streaks at risk")

	return records, nil
}
