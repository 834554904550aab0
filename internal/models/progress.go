package models

import (
	"sort"
	"time"
)

const (
	DefaultLevel                = 1
	DefaultConsecutiveLoginDays = 1
)

// ProgressRecord is the single progression document kept per user.
type ProgressRecord struct {
	UserID               string    `json:"userId"`
	TotalXP              int       `json:"totalXp"`
	CurrentLevel         int       `json:"currentLevel"` // written by the XP-awarding side, see LevelStatus
	WordsLearned         int       `json:"wordsLearned"`
	LearnedWordIDs       []string  `json:"learnedWordIds"`
	QuizStreak           int       `json:"quizStreak"` // owned by the quiz subsystem
	ConsecutiveLoginDays int       `json:"consecutiveLoginDays"`
	LastLoginDate        Date      `json:"lastLoginDate"`
	CreatedAt            time.Time `json:"createdAt"`
	LineUserID           string    `json:"-"` // optional, set when the user links LINE notifications

	// DefaultedFields lists stored attributes that were missing and filled with defaults on read.
	DefaultedFields []string `json:"defaultedFields,omitempty"`
}

// NewProgressRecord returns the record a user starts with on their first load.
func NewProgressRecord(userID string, today Date, now time.Time) ProgressRecord {
	return ProgressRecord{
		UserID:               userID,
		TotalXP:              0,
		CurrentLevel:         DefaultLevel,
		WordsLearned:         0,
		LearnedWordIDs:       []string{},
		QuizStreak:           0,
		ConsecutiveLoginDays: DefaultConsecutiveLoginDays,
		LastLoginDate:        today,
		CreatedAt:            now,
	}
}

// WordCountConsistent reports whether WordsLearned matches the learned id set.
func (p ProgressRecord) WordCountConsistent() bool {
	return p.WordsLearned == len(p.LearnedWordIDs)
}

// UniqueWordIDs returns ids with duplicates removed, keeping first occurrence order.
func UniqueWordIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SortedWordIDs is used where a stable order is needed from a stored set.
func SortedWordIDs(ids []string) []string {
	out := UniqueWordIDs(ids)
	sort.Strings(out)
	return out
}
