package utils

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v2"
)

//go:embed message/streak_reminder.yaml
var streakReminderYAML []byte

type StreakReminderTemplate struct {
	FirstDay       string `yaml:"first_day"`
	Streak         string `yaml:"streak"`
	Milestone      string `yaml:"milestone"`
	MilestoneEvery int    `yaml:"milestone_every"`

	firstDay, streak, milestone *template.Template
}

type streakReminderData struct {
	Days int
}

func LoadStreakReminderTemplate() (*StreakReminderTemplate, error) {
	var tmpl StreakReminderTemplate
	if err := yaml.Unmarshal(streakReminderYAML, &tmpl); err != nil {
		return nil, fmt.Errorf("error parsing streak reminder yaml: %w", err)
	}
	if tmpl.Streak == "" {
		return nil, fmt.Errorf("streak reminder yaml has no streak message")
	}

	var err error
	if tmpl.streak, err = parseMessage("streak", tmpl.Streak); err != nil {
		return nil, err
	}
	if tmpl.firstDay, err = parseMessage("first_day", tmpl.FirstDay); err != nil {
		return nil, err
	}
	if tmpl.milestone, err = parseMessage("milestone", tmpl.Milestone); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// parseMessage returns nil for an empty message.
func parseMessage(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s message template: %w", name, err)
	}
	return t, nil
}

// Render picks the message for a user whose streak currently stands at days.
func (t *StreakReminderTemplate) Render(days int) (string, error) {
	msg := t.streak
	switch {
	case days <= 1 && t.firstDay != nil:
		msg = t.firstDay
	case t.MilestoneEvery > 0 && days%t.MilestoneEvery == 0 && t.milestone != nil:
		msg = t.milestone
	}

	var buf bytes.Buffer
	if err := msg.Execute(&buf, streakReminderData{Days: days}); err != nil {
		return "", fmt.Errorf("failed to render streak reminder: %w", err)
	}
	return buf.String(), nil
}
