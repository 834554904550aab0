package models

// LevelStatus is derived from TotalXP on every read.
type LevelStatus struct {
	Level           int     `json:"level"`       // implied by TotalXP
	StoredLevel     int     `json:"storedLevel"` // as persisted on the record
	LevelMismatch   bool    `json:"levelMismatch"`
	XPIntoLevel     int     `json:"xpIntoLevel"`
	XPForNextLevel  int     `json:"xpForNextLevel"` // cumulative threshold that completes Level
	ProgressPercent float64 `json:"progressPercent"`
	Fraction        float64 `json:"fraction"` // within [0, 1]
}

type Dashboard struct {
	Progress          ProgressRecord    `json:"progress"`
	Level             LevelStatus       `json:"level"`
	DailyXP           int               `json:"dailyXp"`
	RecentSessions    []SessionLogEntry `json:"recentSessions"`
	// first learned word ids in id order; the record keeps no per-word learn time
	LearnedWordSample []string          `json:"learnedWordSample"`
	StreakApplied     bool              `json:"streakApplied"`
	ShowTutorial      bool              `json:"showTutorial"`
	WordCountMismatch bool              `json:"wordCountMismatch"`
}
