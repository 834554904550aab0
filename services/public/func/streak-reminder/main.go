package main

import (
	"context"
	"errors"
	"os"
	"word-progress/internal/repository"
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
	SERVICENAME = "streak-reminder"
)

type EnvVars struct {
	channelSecret     string
	channelToken      string
	progressTableName string
	timezone          string
}

func getEnvironmentVariables() (envVars *EnvVars, err error) {
	channelSecret := os.Getenv("CHANNEL_SECRET")
	if channelSecret == "" {
		return nil, errors.New("CHANNEL_SECRET is not set")
	}

	channelToken := os.Getenv("CHANNEL_TOKEN")
	if channelToken == "" {
		return nil, errors.New("CHANNEL_TOKEN is not set")
	}

	progressTableName := os.Getenv("PROGRESS_TABLE_NAME")
	if progressTableName == "" {
		return nil, errors.New("PROGRESS_TABLE_NAME is not set")
	}

	timezone := os.Getenv("TIMEZONE")
	if timezone == "" {
		timezone = "UTC"
	}

	return &EnvVars{
		channelSecret:     channelSecret,
		channelToken:      channelToken,
		progressTableName: progressTableName,
		timezone:          timezone,
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

	botClient, err := utils.NewLineBotClient(envVars.channelSecret, envVars.channelToken)
	if err != nil {
		logger.WithError(err).Error("Failed to create line bot client")
		panic(err)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		logger.WithError(err).Error("Failed to load AWS config")
		panic(err)
	}
	dynamodbClient := dynamodb.NewFromConfig(cfg)

	reminderRepo := repository.NewReminderRepository(logger, dynamodbClient, envVars.progressTableName)

	handler, err := NewHandler(logger, envVars, reminderRepo, botClient, clock)
	if err != nil {
		logger.WithError(err).Error("Failed to create handler")
		panic(err)
	}

	lambda.Start(handler.EventHandler)
}
