package progression

import (
	"sort"
	"time"
	"word-progress/internal/models"
)

// DailyXP sums XPEarned over entries created on today, with creation times read in loc.
func DailyXP(entries []models.SessionLogEntry, today models.Date, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	total := 0
	for _, e := range entries {
		if e.XPEarned <= 0 {
			continue
		}
		if models.DateOf(e.CreatedAt.In(loc)) == today {
			total += e.XPEarned
		}
	}
	return total
}

// RecentSessions returns up to n entries, newest first. The input is left untouched.
func RecentSessions(entries []models.SessionLogEntry, n int) []models.SessionLogEntry {
	sorted := make([]models.SessionLogEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
