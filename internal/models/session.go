package models

import "time"

// SessionSortKeyLayout is fixed-width so sort keys compare lexicographically in time order.
const SessionSortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// SessionLogEntry is one completed quiz session, written by the quiz subsystem.
type SessionLogEntry struct {
	ID        string    `json:"id" dynamodbav:"id"`
	UserID    string    `json:"userId" dynamodbav:"userId"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
	XPEarned  int       `json:"xpEarned" dynamodbav:"xpEarned"`
}

// SessionSortKey builds the "sk" value the session table is ordered by.
func SessionSortKey(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(SessionSortKeyLayout) + "#" + id
}
