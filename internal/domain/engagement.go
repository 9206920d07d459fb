package domain

import (
	"time"
	_ "time/tzdata" // users may name any IANA zone
)

// ─── Users ──────────────────────────────────────────────────────────────────

// User owns a progression state. Only TotalXP and the stats are stored;
// Level and Title are filled in on read.
type User struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Timezone    string           `json:"timezone"`
	Progression ProgressionState `json:"progression"`
	Version     int64            `json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Location returns the user's calendar timezone, UTC if unset or unknown.
func (u User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Profile is the read model served for "me".
type Profile struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Timezone    string           `json:"timezone"`
	Progression ProgressionState `json:"progression"`
	Next        LevelInfo        `json:"levelProgress"`
	ProgressPct float64          `json:"progressPct"`
}

// ─── Quests ─────────────────────────────────────────────────────────────────

// QuestTemplate defines a daily quest that can be handed out.
type QuestTemplate struct {
	Title      string
	Category   StatCategory
	Difficulty Difficulty
}

// Quest is one daily quest issued to a user for a calendar day.
type Quest struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Day         string       `json:"day"` // YYYY-MM-DD in the user's timezone
	Title       string       `json:"title"`
	Category    StatCategory `json:"category"`
	Difficulty  Difficulty   `json:"difficulty"`
	Completed   bool         `json:"completed"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ─── Completions ────────────────────────────────────────────────────────────

// Completion records one finished task or quest and the XP it earned.
type Completion struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	TaskID        string    `json:"taskId,omitempty"`
	QuestID       string    `json:"questId,omitempty"`
	ActualMinutes int       `json:"actualMinutes"`
	XPEarned      int64     `json:"xpEarned"`
	Notes         string    `json:"notes,omitempty"`
	CompletedAt   time.Time `json:"completedAt"`
}

// CompletionResult is returned to the caller after a task or quest is completed.
type CompletionResult struct {
	Completion Completion `json:"completion"`
	XPEarned   int64      `json:"xpEarned"`
	StreakDays int        `json:"streakDays"`
	StatGain   float64    `json:"statGain"`
	LeveledUp  bool       `json:"leveledUp"`
	Profile    Profile    `json:"profile"`
}
