package progression

import (
	"time"

	"github.com/lifexp-app/lifexp/internal/domain"
)

// DecayedStreak returns the streak to display for h at now.
//
// Days are calendar days in now's location. A completion today or yesterday
// leaves the stored streak intact; every further missed day costs one point,
// never going below zero.
func DecayedStreak(h domain.HabitStreakState, now time.Time) int {
	if h.LastCompletedAt == nil {
		return 0
	}

	diff := calendarDaysBetween(*h.LastCompletedAt, now)
	if diff <= 1 {
		return h.StreakCurrent
	}
	return max(0, h.StreakCurrent-(diff-1))
}

// AdvanceStreak returns the state after completing the habit at now.
// Pending decay is applied first; completing twice on one day counts twice.
func AdvanceStreak(h domain.HabitStreakState, now time.Time) domain.HabitStreakState {
	next := DecayedStreak(h, now) + 1
	at := now
	return domain.HabitStreakState{
		LastCompletedAt: &at,
		StreakCurrent:   next,
		StreakLongest:   max(h.StreakLongest, next),
	}
}

// calendarDaysBetween counts whole calendar days between the dates of a and b,
// read in b's location. Elapsed hours do not matter, only the dates.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
