package domain

import "time"

// HabitFrequency is how often a habit is expected to be completed.
type HabitFrequency string

const (
	HabitDaily  HabitFrequency = "DAILY"
	HabitWeekly HabitFrequency = "WEEKLY"
)

// Valid reports whether f is a known frequency.
func (f HabitFrequency) Valid() bool {
	return f == HabitDaily || f == HabitWeekly
}

// Task is a user-defined unit of real-world work. Habit tasks carry a streak.
type Task struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Category         StatCategory   `json:"category"`
	Difficulty       Difficulty     `json:"difficulty"`
	EstimatedMinutes int            `json:"estimatedMinutes"`
	IsHabit          bool           `json:"isHabit"`
	HabitFrequency   HabitFrequency `json:"habitFrequency,omitempty"`
	Tags             []string       `json:"tags"`
	HabitStreakState
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskFilter narrows a task listing. Nil fields match everything.
type TaskFilter struct {
	Category   *StatCategory
	Difficulty *Difficulty
	IsHabit    *bool
}

// Matches reports whether t passes the filter.
func (f TaskFilter) Matches(t Task) bool {
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Difficulty != nil && t.Difficulty != *f.Difficulty {
		return false
	}
	if f.IsHabit != nil && t.IsHabit != *f.IsHabit {
		return false
	}
	return true
}

// NewTask is the input for creating a task.
type NewTask struct {
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Category         StatCategory   `json:"category"`
	Difficulty       Difficulty     `json:"difficulty"`
	EstimatedMinutes int            `json:"estimatedMinutes"`
	IsHabit          bool           `json:"isHabit"`
	HabitFrequency   HabitFrequency `json:"habitFrequency,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title            *string         `json:"title,omitempty"`
	Description      *string         `json:"description,omitempty"`
	Category         *StatCategory   `json:"category,omitempty"`
	Difficulty       *Difficulty     `json:"difficulty,omitempty"`
	EstimatedMinutes *int            `json:"estimatedMinutes,omitempty"`
	IsHabit          *bool           `json:"isHabit,omitempty"`
	HabitFrequency   *HabitFrequency `json:"habitFrequency,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
}
