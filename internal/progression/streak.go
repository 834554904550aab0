package progression

import "word-progress/internal/models"

// NextStreak returns the login date and consecutive-day count after a visit on today.
// A visit on the stored day changes nothing. A visit on the following day extends the
// streak; any other day, including one earlier than the stored date, starts over at 1.
func NextStreak(lastLoginDate models.Date, consecutiveLoginDays int, today models.Date) (models.Date, int) {
	if today == lastLoginDate {
		return lastLoginDate, consecutiveLoginDays
	}
	if !lastLoginDate.IsZero() && today == lastLoginDate.AddDays(1) {
		return today, consecutiveLoginDays + 1
	}
	return today, 1
}
