package progression

import "word-progress/internal/models"

const XPPerLevel = 100

// LevelForXP returns the level implied by cumulative XP.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// LevelFraction is the share of the current level already earned, clamped to [0, 1].
func LevelFraction(totalXP int) float64 {
	level := LevelForXP(totalXP)
	f := float64(totalXP-XPPerLevel*(level-1)) / XPPerLevel
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Level computes the level view of a record. The stored CurrentLevel is reported
// alongside, never corrected.
func Level(record models.ProgressRecord) models.LevelStatus {
	level := LevelForXP(record.TotalXP)
	fraction := LevelFraction(record.TotalXP)
	into := record.TotalXP - XPPerLevel*(level-1)
	if into < 0 {
		into = 0
	}
	return models.LevelStatus{
		Level:           level,
		StoredLevel:     record.CurrentLevel,
		LevelMismatch:   record.CurrentLevel != level,
		XPIntoLevel:     into,
		XPForNextLevel:  XPPerLevel * level,
		ProgressPercent: fraction * 100,
		Fraction:        fraction,
	}
}
