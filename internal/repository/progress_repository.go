package repository

import (
	"context"
	"errors"
	"strconv"
	"word-progress/internal/models"
	"word-progress/internal/progression"
	"word-progress/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

type progressRepository struct {
	logger    *logrus.Entry
	dynamodb  utils.DynamoDbAPI
	tableName string
	clock     utils.Clock
}

func NewProgressRepository(logger *logrus.Entry, dynamodb utils.DynamoDbAPI, tableName string, clock utils.Clock) utils.ProgressRepository {
	return &progressRepository{
		logger:    logger,
		dynamodb:  dynamodb,
		tableName: tableName,
		clock:     clock,
	}
}

func (r *progressRepository) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
}

// get returns (nil, nil, nil) when the user has no record yet. The raw item is
// returned alongside the decoded record for building write conditions.
func (r *progressRepository) get(ctx context.Context, userID string) (*models.ProgressRecord, map[string]types.AttributeValue, error) {
	result, err := r.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.WithError(err).WithField("userId", userID).Error("Failed to get progress record from DynamoDB")
		return nil, nil, utils.NewStoreUnavailable("get progress record", err)
	}

	if result.Item == nil {
		return nil, nil, nil
	}

	record, err := unmarshalProgress(result.Item)
	if err != nil {
		r.logger.WithError(err).WithField("userId", userID).Error("Failed to decode progress record")
		return nil, nil, utils.NewStoreUnavailable("get progress record", err)
	}
	if len(record.DefaultedFields) > 0 {
		r.logger.WithFields(logrus.Fields{
			"userId":          userID,
			"defaultedFields": record.DefaultedFields,
		}).Warn("Progress record is missing attributes, defaults applied")
	}
	return record, result.Item, nil
}

func (r *progressRepository) GetOrCreate(ctx context.Context, userID string) (*models.ProgressRecord, error) {
	existing, _, err := r.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	record := models.NewProgressRecord(userID, r.clock.Today(), r.clock.Now())
	item, err := marshalProgress(record)
	if err != nil {
		return nil, utils.NewStoreWriteFailed("create progress record", err)
	}

	_, err = r.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if !errors.As(err, &conflict) {
			r.logger.WithError(err).WithField("userId", userID).Error("Failed to create progress record in DynamoDB")
			return nil, utils.NewStoreWriteFailed("create progress record", err)
		}

		// Another load created the record between our read and our write; keep theirs.
		r.logger.WithField("userId", userID).Info("Progress record create conflict, reading the existing record")
		winner, _, err := r.get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, utils.NewStoreUnavailable("get progress record after create conflict", errors.New("record missing after conditional create failed"))
		}
		return winner, nil
	}

	r.logger.WithFields(logrus.Fields{
		"userId":        userID,
		"lastLoginDate": record.LastLoginDate.String(),
	}).Info("Successfully created progress record")

	return &record, nil
}

func (r *progressRepository) ApplyLoginStreak(ctx context.Context, userID string, today models.Date) (*models.ProgressRecord, error) {
	current, stored, err := r.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &utils.StoreError{Kind: utils.ErrProgressNotFound, Op: "apply login streak"}
	}

	newLastLogin, newDays := progression.NextStreak(current.LastLoginDate, current.ConsecutiveLoginDays, today)
	if newLastLogin == current.LastLoginDate {
		return current, nil
	}

	// Only the two streak attributes are written, and only while the stored login date is
	// still the one this computation started from.
	guard, guardValues := lastLoginGuard(stored[lastLoginAttr])
	condition := "attribute_exists(userId) AND " + guard
	values := map[string]types.AttributeValue{
		":lastLogin": &types.AttributeValueMemberS{Value: newLastLogin.String()},
		":days":      &types.AttributeValueMemberN{Value: strconv.Itoa(newDays)},
	}
	for k, v := range guardValues {
		values[k] = v
	}

	result, err := r.dynamodb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(userID),
		UpdateExpression:          aws.String("SET lastLoginDate = :lastLogin, consecutiveLoginDays = :days"),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return r.resolveStreakConflict(ctx, current, today, err)
		}
		r.logger.WithError(err).WithField("userId", userID).Error("Failed to update login streak in DynamoDB")
		return current, utils.NewStoreWriteFailed("update login streak", err)
	}

	updated, err := unmarshalProgress(result.Attributes)
	if err != nil {
		// The write landed; fall back to the values we wrote on top of what we read.
		r.logger.WithError(err).WithField("userId", userID).Warn("Failed to decode updated progress record")
		patched := *current
		patched.LastLoginDate = newLastLogin
		patched.ConsecutiveLoginDays = newDays
		updated = &patched
	}

	r.logger.WithFields(logrus.Fields{
		"userId":               userID,
		"lastLoginDate":        newLastLogin.String(),
		"consecutiveLoginDays": newDays,
	}).Info("Successfully updated login streak")

	return updated, nil
}

// resolveStreakConflict handles a lost race on the streak write. If a concurrent load
// already moved the record to today, its result stands; anything else is a failed write.
func (r *progressRepository) resolveStreakConflict(ctx context.Context, read *models.ProgressRecord, today models.Date, cause error) (*models.ProgressRecord, error) {
	latest, _, err := r.get(ctx, read.UserID)
	if err != nil {
		return read, utils.NewStoreWriteFailed("update login streak", cause)
	}
	if latest != nil && latest.LastLoginDate == today {
		r.logger.WithField("userId", read.UserID).Info("Login streak already applied by a concurrent load")
		return latest, nil
	}
	r.logger.WithError(cause).WithField("userId", read.UserID).Error("Login streak update rejected by condition")
	return read, utils.NewStoreWriteFailed("update login streak", cause)
}
