// Command progress-local runs one dashboard load against a DynamoDB endpoint
// (DynamoDB Local by default) and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"word-progress/internal/repository"
	"word-progress/internal/service"
	"word-progress/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

type options struct {
	userID        string
	endpoint      string
	progressTable string
	sessionTable  string
	timezone      string
	window        int
	verbose       bool
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFlags() *options {
	opts := &options{}
	flag.StringVarP(&opts.userID, "user", "u", "", "user id to load the dashboard for")
	flag.StringVar(&opts.endpoint, "endpoint", envOr("DYNAMODB_ENDPOINT", "http://localhost:8000"), "DynamoDB endpoint, empty for the AWS default")
	flag.StringVar(&opts.progressTable, "progress-table", os.Getenv("PROGRESS_TABLE_NAME"), "progress table name")
	flag.StringVar(&opts.sessionTable, "session-table", os.Getenv("SESSION_TABLE_NAME"), "session log table name")
	flag.StringVar(&opts.timezone, "timezone", envOr("TIMEZONE", "UTC"), "IANA zone that decides calendar days")
	flag.IntVar(&opts.window, "window", 7, "days of session history to read")
	flag.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flag.Parse()
	return opts
}

func run(ctx context.Context, opts *options, logger *logrus.Entry) error {
	if opts.userID == "" {
		return fmt.Errorf("--user is required")
	}
	if opts.progressTable == "" || opts.sessionTable == "" {
		return fmt.Errorf("both table names are required, set PROGRESS_TABLE_NAME and SESSION_TABLE_NAME or pass the flags")
	}

	clock, err := utils.NewSystemClock(opts.timezone)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.endpoint != "" {
			o.BaseEndpoint = aws.String(opts.endpoint)
		}
	})

	progressRepo := repository.NewProgressRepository(logger, client, opts.progressTable, clock)
	sessionLog := repository.NewSessionLogRepository(logger, client, opts.sessionTable)
	dashboardService := service.NewDashboardService(logger, progressRepo, sessionLog, clock, opts.window)

	dashboard, err := dashboardService.LoadDashboard(ctx, opts.userID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dashboard)
}

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	opts := parseFlags()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	entry := logger.WithField("component", "progress-local")

	if err := run(context.Background(), opts, entry); err != nil {
		entry.WithError(err).Error("Dashboard load failed")
		os.Exit(1)
	}
}
