package utils

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

type LinebotAPI interface {
	PushMessage(ctx context.Context, to string, message string) error
}

type LineBotClient struct {
	client *linebot.Client
}

func NewLineBotClient(channelSecret string, channelToken string) (LinebotAPI, error) {
	client, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create line bot client: %w", err)
	}
	return &LineBotClient{
		client: client,
	}, nil
}

func (c *LineBotClient) PushMessage(ctx context.Context, to string, message string) error {
	_, err := c.client.PushMessage(to, linebot.NewTextMessage(message).
		WithSender(&linebot.Sender{
			Name: "Streak Bot",
		})).WithContext(ctx).Do()
	return err
}
