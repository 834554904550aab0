package main

import (
	"context"
	"encoding/json"
	"word-progress/internal/models"
	"word-progress/internal/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	logger       *logrus.Entry
	envVars      *EnvVars
	reminderRepo utils.ReminderRepository
	botClient    utils.LinebotAPI
	template     *utils.StreakReminderTemplate
	clock        utils.Clock
}

// ReminderEvent lets a manual invocation replay the run for another day.
type ReminderEvent struct {
	Date string `json:"date"`
}

func NewHandler(logger *logrus.Entry, envVars *EnvVars, reminderRepo utils.ReminderRepository, botClient utils.LinebotAPI, clock utils.Clock) (*Handler, error) {
	template, err := utils.LoadStreakReminderTemplate()
	if err != nil {
		return nil, err
	}
	return &Handler{
		logger:       logger,
		envVars:      envVars,
		reminderRepo: reminderRepo,
		botClient:    botClient,
		template:     template,
		clock:        clock,
	}, nil
}

func (h *Handler) EventHandler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	today := h.clock.Today()
	if req.Body != "" {
		var event ReminderEvent
		if err := json.Unmarshal([]byte(req.Body), &event); err != nil {
			h.logger.WithError(err).Error("Failed to decode reminder event")
			return events.APIGatewayProxyResponse{
				StatusCode: 400,
				Body:       "Bad request",
			}, nil
		}
		if event.Date != "" {
			date, err := models.ParseDate(event.Date)
			if err != nil {
				h.logger.WithError(err).Error("Invalid date in reminder event")
				return events.APIGatewayProxyResponse{
					StatusCode: 400,
					Body:       "Bad request",
				}, nil
			}
			h.logger.Info("Getting the request for date: ", event.Date)
			today = date
		}
	}

	yesterday := today.AddDays(-1)
	records, err := h.reminderRepo.GetStreaksAtRisk(ctx, yesterday)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get streaks at risk")
		return events.APIGatewayProxyResponse{
			StatusCode: 500,
			Body:       "Internal server error",
		}, nil
	}

	sent := 0
	for index, record := range records {
		h.logger.Infof("Currently handle %d user: %s", index, record.UserID)
		message, err := h.template.Render(record.ConsecutiveLoginDays)
		if err != nil {
			h.logger.WithError(err).WithField("userId", record.UserID).Error("Failed to render streak reminder")
			continue
		}
		if err := h.botClient.PushMessage(ctx, record.LineUserID, message); err != nil {
			h.logger.WithError(err).WithField("userId", record.UserID).Error("Failed to send streak reminder")
			continue
		}
		sent++
	}

	h.logger.WithFields(logrus.Fields{
		"lastLoginDate": yesterday.String(),
		"candidates":    len(records),
		"sent":          sent,
	}).Info("Successfully sent streak reminders")
	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Body:       "Reminder sent",
	}, nil
}
