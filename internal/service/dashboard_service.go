package service

import (
	"context"
	"errors"
	"fmt"
	"word-progress/internal/models"
	"word-progress/internal/progression"
	"word-progress/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	recentSessionCount    = 3
	learnedWordSampleSize = 6
)

type DashboardService struct {
	logger           *logrus.Entry
	progressRepo     utils.ProgressRepository
	sessionLog       utils.SessionLogReader
	clock            utils.Clock
	recentWindowDays int
}

func NewDashboardService(logger *logrus.Entry, progressRepo utils.ProgressRepository, sessionLog utils.SessionLogReader, clock utils.Clock, recentWindowDays int) *DashboardService {
	if recentWindowDays < 1 {
		recentWindowDays = 1
	}
	return &DashboardService{
		logger:           logger,
		progressRepo:     progressRepo,
		sessionLog:       sessionLog,
		clock:            clock,
		recentWindowDays: recentWindowDays,
	}
}

// LoadDashboard runs one dashboard load: the progress record path (fetch or create,
// then the login streak) and the session log path run side by side.
//
// A failed streak write does not fail the load; the record is returned as read and
// StreakApplied is false.
func (s *DashboardService) LoadDashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	today := s.clock.Today()
	logger := s.logger.WithFields(logrus.Fields{
		"userId": userID,
		"today":  today.String(),
	})

	var (
		record        *models.ProgressRecord
		streakApplied bool
		sessions      []models.SessionLogEntry
		recent        []models.SessionLogEntry
	)

	// Plain group: a session log failure must not cancel an in-flight streak write.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		record, streakApplied, err = s.loadProgress(ctx, userID, today)
		return err
	})
	g.Go(func() error {
		since := today.AddDays(-(s.recentWindowDays - 1)).Start(s.clock.Location())
		var err error
		sessions, err = s.sessionLog.QueryByOwner(ctx, userID, since)
		return err
	})
	// recent quizzes are not bounded by the XP window
	g.Go(func() error {
		var err error
		recent, err = s.sessionLog.QueryRecent(ctx, userID, recentSessionCount)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Failed to load dashboard")
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	level := progression.Level(*record)
	if level.LevelMismatch {
		logger.WithFields(logrus.Fields{
			"totalXp":      record.TotalXP,
			"storedLevel":  level.StoredLevel,
			"impliedLevel": level.Level,
		}).Warn("Stored level disagrees with total XP")
	}

	wordCountMismatch := !record.WordCountConsistent()
	if wordCountMismatch {
		logger.WithFields(logrus.Fields{
			"wordsLearned":   record.WordsLearned,
			"learnedWordIds": len(record.LearnedWordIDs),
		}).Warn("Words learned count disagrees with learned word ids")
	}

	wordSample := record.LearnedWordIDs
	if len(wordSample) > learnedWordSampleSize {
		wordSample = wordSample[:learnedWordSampleSize]
	}

	dashboard := &models.Dashboard{
		Progress:          *record,
		Level:             level,
		DailyXP:           progression.DailyXP(sessions, today, s.clock.Location()),
		RecentSessions:    progression.RecentSessions(recent, recentSessionCount),
		LearnedWordSample: append([]string{}, wordSample...),
		StreakApplied:     streakApplied,
		ShowTutorial:      record.WordsLearned == 0,
		WordCountMismatch: wordCountMismatch,
	}

	logger.WithFields(logrus.Fields{
		"level":                level.Level,
		"dailyXp":              dashboard.DailyXP,
		"consecutiveLoginDays": record.ConsecutiveLoginDays,
		"streakApplied":        streakApplied,
	}).Info("Successfully loaded dashboard")

	return dashboard, nil
}

func (s *DashboardService) loadProgress(ctx context.Context, userID string, today models.Date) (*models.ProgressRecord, bool, error) {
	record, err := s.progressRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if record.LastLoginDate == today {
		return record, true, nil
	}

	updated, err := s.progressRepo.ApplyLoginStreak(ctx, userID, today)
	if err != nil {
		if errors.Is(err, utils.ErrStoreWriteFailed) && updated != nil {
			s.logger.WithError(err).WithField("userId", userID).Warn("Login streak not applied, showing record as read")
			return updated, false, nil
		}
		return nil, false, err
	}
	return updated, true, nil
}
