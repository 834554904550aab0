package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"word-progress/internal/models"
	"word-progress/internal/utils"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

type DashboardLoader interface {
	LoadDashboard(ctx context.Context, userID string) (*models.Dashboard, error)
}

type Handler struct {
	logger    *logrus.Entry
	envVars   *EnvVars
	dashboard DashboardLoader
}

func NewHandler(logger *logrus.Entry, envVars *EnvVars, dashboard DashboardLoader) (*Handler, error) {
	return &Handler{
		logger:    logger,
		envVars:   envVars,
		dashboard: dashboard,
	}, nil
}

type DashboardResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (h *Handler) EventHandler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID := requestUserID(request)
	if userID == "" {
		h.logger.Error("User ID is required")
		return h.errorResponse(http.StatusBadRequest, "User ID is required"), nil
	}

	dashboard, err := h.dashboard.LoadDashboard(ctx, userID)
	if err != nil {
		h.logger.WithError(err).WithField("userId", userID).Error("Failed to load dashboard")
		if errors.Is(err, utils.ErrStoreUnavailable) {
			return h.errorResponse(http.StatusServiceUnavailable, "Progress is temporarily unavailable, please try again"), nil
		}
		return h.errorResponse(http.StatusInternalServerError, "Failed to load dashboard"), nil
	}

	message := "Dashboard loaded"
	if !dashboard.StreakApplied {
		message = "Dashboard loaded, login streak not updated"
	}
	return h.successResponse(DashboardResponse{
		Status:  "success",
		Message: message,
		Data:    dashboard,
	}), nil
}

// requestUserID prefers the identity resolved by the API Gateway authorizer.
func requestUserID(request events.APIGatewayProxyRequest) string {
	if principal, ok := request.RequestContext.Authorizer["principalId"].(string); ok && principal != "" {
		return principal
	}
	return request.PathParameters["userId"]
}

func (h *Handler) errorResponse(statusCode int, message string) events.APIGatewayProxyResponse {
	response := DashboardResponse{
		Status:  "error",
		Message: message,
	}

	body, _ := json.Marshal(response)
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	}
}

func (h *Handler) successResponse(data DashboardResponse) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(data)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	}
}
