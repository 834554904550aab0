package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"word-progress/internal/repository"
	"word-progress/internal/service"
	"word-progress/internal/utils"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"
)

const (
	SEVERITY    = "severity"
	MESSAGE     = "message"
	TIMESTAMP   = "timestamp"
	COMPONENT   = "component"
	SERVICENAME = "progress-dashboard"

	defaultRecentWindowDays = 7
)

type EnvVars struct {
	progressTableName string
	sessionTableName  string
	timezone          string
	recentWindowDays  int
}

func getEnvironmentVariables() (envVars *EnvVars, err error) {
	progressTableName := os.Getenv("PROGRESS_TABLE_NAME")
	if progressTableName == "" {
		return nil, errors.New("PROGRESS_TABLE_NAME is not set")
	}

	sessionTableName := os.Getenv("SESSION_TABLE_NAME")
	if sessionTableName == "" {
		return nil, errors.New("SESSION_TABLE_NAME is not set")
	}

	timezone := os.Getenv("TIMEZONE")
	if timezone == "" {
		timezone = "UTC"
	}

	recentWindowDays := defaultRecentWindowDays
	if v := os.Getenv("RECENT_WINDOW_DAYS"); v != "" {
		recentWindowDays, err = strconv.Atoi(v)
		if err != nil || recentWindowDays < 1 {
			return nil, errors.New("RECENT_WINDOW_DAYS must be a positive integer")
		}
	}

	return &EnvVars{
		progressTableName: progressTableName,
		sessionTableName:  sessionTableName,
		timezone:          timezone,
		recentWindowDays:  recentWindowDays,
	}, nil
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  TIMESTAMP,
			logrus.FieldKeyLevel: SEVERITY,
			logrus.FieldKeyMsg:   MESSAGE,
		},
	})
	logger := logrus.WithField(COMPONENT, SERVICENAME)

	envVars, err := getEnvironmentVariables()
	if err != nil {
		logger.WithError(err).Error("Failed to get environment variables")
		panic(err)
	}

	clock, err := utils.NewSystemClock(envVars.timezone)
	if err != nil {
		logger.WithError(err).Error("Failed to load timezone")
		panic(err)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		logger.WithError(err).Error("Failed to load AWS config")
		panic(err)
	}
	dynamodbClient := dynamodb.NewFromConfig(cfg)

	progressRepo := repository.NewProgressRepository(logger, dynamodbClient, envVars.progressTableName, clock)
	sessionLog := repository.NewSessionLogRepository(logger, dynamodbClient, envVars.sessionTableName)
	dashboardService := service.NewDashboardService(logger, progressRepo, sessionLog, clock, envVars.recentWindowDays)

	handler, err := NewHandler(logger, envVars, dashboardService)
	if err != nil {
		logger.WithError(err).Error("Failed to create handler")
		panic(err)
	}

	lambda.Start(handler.EventHandler)
}
