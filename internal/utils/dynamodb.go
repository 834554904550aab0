package utils

import (
	"context"
	"time"
	"word-progress/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDbAPI defines the DynamoDB operations needed by our application
type DynamoDbAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// ProgressRepository is the only entry point presentation code uses to read or
// advance a user's progress record.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.ProgressRecord, error)
	ApplyLoginStreak(ctx context.Context, userID string, today models.Date) (*models.ProgressRecord, error)
}

// SessionLogReader reads the append-only quiz session log. A zero since reads the
// whole partition. QueryRecent returns the newest limit entries regardless of age.
type SessionLogReader interface {
	QueryByOwner(ctx context.Context, userID string, since time.Time) ([]models.SessionLogEntry, error)
	QueryRecent(ctx context.Context, userID string, limit int) ([]models.SessionLogEntry, error)
}

// ReminderRepository finds users whose login streak lapses if they skip today
type ReminderRepository interface {
	GetStreaksAtRisk(ctx context.Context, lastLoginDate models.Date) ([]models.ProgressRecord, error)
}
