package repository

import (
	"fmt"
	"time"
	"word-progress/internal/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const lastLoginAttr = "lastLoginDate"

// progressItem is the stored shape of a progress record. Pointer fields tell a
// missing attribute apart from a stored zero. lastLoginDate is read from the raw
// item, see decodeLastLogin.
type progressItem struct {
	UserID               string     `dynamodbav:"userId"`
	TotalXP              *int       `dynamodbav:"totalXp"`
	CurrentLevel         *int       `dynamodbav:"currentLevel"`
	WordsLearned         *int       `dynamodbav:"wordsLearned"`
	LearnedWordIDs       []string   `dynamodbav:"learnedWordIds,stringset,omitempty"`
	QuizStreak           *int       `dynamodbav:"quizStreak"`
	ConsecutiveLoginDays *int       `dynamodbav:"consecutiveLoginDays"`
	CreatedAt            *time.Time `dynamodbav:"createdAt"`
	LineUserID           string     `dynamodbav:"lineUserId,omitempty"`
}

func marshalProgress(record models.ProgressRecord) (map[string]types.AttributeValue, error) {
	createdAt := record.CreatedAt.UTC()
	item := progressItem{
		UserID:               record.UserID,
		TotalXP:              &record.TotalXP,
		CurrentLevel:         &record.CurrentLevel,
		WordsLearned:         &record.WordsLearned,
		LearnedWordIDs:       models.UniqueWordIDs(record.LearnedWordIDs),
		QuizStreak:           &record.QuizStreak,
		ConsecutiveLoginDays: &record.ConsecutiveLoginDays,
		CreatedAt:            &createdAt,
		LineUserID:           record.LineUserID,
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress record: %w", err)
	}
	if !record.LastLoginDate.IsZero() {
		av[lastLoginAttr] = &types.AttributeValueMemberS{Value: record.LastLoginDate.String()}
	}
	return av, nil
}

// unmarshalProgress decodes a stored item and fills missing attributes with the
// same defaults a new record starts with, noting each one in DefaultedFields.
func unmarshalProgress(av map[string]types.AttributeValue) (*models.ProgressRecord, error) {
	var item progressItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress record: %w", err)
	}

	record := &models.ProgressRecord{
		UserID:         item.UserID,
		LearnedWordIDs: models.SortedWordIDs(item.LearnedWordIDs),
		LineUserID:     item.LineUserID,
	}
	defaulted := func(name string) {
		record.DefaultedFields = append(record.DefaultedFields, name)
	}

	record.TotalXP = intOr(item.TotalXP, 0, "totalXp", defaulted)
	record.CurrentLevel = intOr(item.CurrentLevel, models.DefaultLevel, "currentLevel", defaulted)
	record.WordsLearned = intOr(item.WordsLearned, 0, "wordsLearned", defaulted)
	record.QuizStreak = intOr(item.QuizStreak, 0, "quizStreak", defaulted)
	record.ConsecutiveLoginDays = intOr(item.ConsecutiveLoginDays, models.DefaultConsecutiveLoginDays, "consecutiveLoginDays", defaulted)
	if record.ConsecutiveLoginDays < 1 {
		record.ConsecutiveLoginDays = models.DefaultConsecutiveLoginDays
		defaulted("consecutiveLoginDays")
	}

	if d, ok := decodeLastLogin(av[lastLoginAttr]); ok {
		record.LastLoginDate = d
	} else {
		defaulted(lastLoginAttr)
	}

	if item.CreatedAt == nil {
		defaulted("createdAt")
	} else {
		record.CreatedAt = *item.CreatedAt
	}

	return record, nil
}

// decodeLastLogin accepts "2006-01-02" or a timestamp starting with one. Anything
// else reads as no date.
func decodeLastLogin(av types.AttributeValue) (models.Date, bool) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok || s.Value == "" {
		return models.Date{}, false
	}
	if d, err := models.ParseDate(s.Value); err == nil {
		return d, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s.Value); err == nil {
		return models.DateOf(t), true
	}
	if len(s.Value) > len(models.DateLayout) && s.Value[len(models.DateLayout)] == 'T' {
		if d, err := models.ParseDate(s.Value[:len(models.DateLayout)]); err == nil {
			return d, true
		}
	}
	return models.Date{}, false
}

// lastLoginGuard builds the condition that the stored lastLoginDate is still
// exactly what was read, whatever shape that value had.
func lastLoginGuard(av types.AttributeValue) (string, map[string]types.AttributeValue) {
	switch v := av.(type) {
	case nil:
		return "attribute_not_exists(lastLoginDate)", nil
	case *types.AttributeValueMemberS:
		return "lastLoginDate = :prevLastLogin", map[string]types.AttributeValue{
			":prevLastLogin": &types.AttributeValueMemberS{Value: v.Value},
		}
	default:
		return "attribute_type(lastLoginDate, :prevLastLoginType)", map[string]types.AttributeValue{
			":prevLastLoginType": &types.AttributeValueMemberS{Value: attributeType(v)},
		}
	}
}

// attributeType returns the DynamoDB type descriptor of av.
func attributeType(av types.AttributeValue) string {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return "S"
	case *types.AttributeValueMemberN:
		return "N"
	case *types.AttributeValueMemberB:
		return "B"
	case *types.AttributeValueMemberBOOL:
		return "BOOL"
	case *types.AttributeValueMemberNULL:
		return "NULL"
	case *types.AttributeValueMemberSS:
		return "SS"
	case *types.AttributeValueMemberNS:
		return "NS"
	case *types.AttributeValueMemberBS:
		return "BS"
	case *types.AttributeValueMemberM:
		return "M"
	case *types.AttributeValueMemberL:
		return "L"
	}
	return ""
}

func intOr(v *int, def int, name string, defaulted func(string)) int {
	if v == nil {
		defaulted(name)
		return def
	}
	return *v
}
