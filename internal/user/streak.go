package user

import "time"

// NextLoginStreak applies the daily login streak rules: the first ever
// check-in starts the streak at 1; a second check-in on the same
// calendar day leaves it untouched; a check-in within 24 hours of the
// previous one (on a new day) extends it by 1; anything later resets it
// to 1. Calendar days are compared by local date components.
func NextLoginStreak(current int, lastLogin *time.Time, now time.Time) int {
	if lastLogin == nil {
		return 1
	}
	ly, lm, ld := lastLogin.Local().Date()
	ny, nm, nd := now.Local().Date()
	if ly == ny && lm == nm && ld == nd {
		return current
	}
	if now.Sub(*lastLogin) <= 24*time.Hour {
		return current + 1
	}
	return 1
}
