// Package domain holds the LifeXP value types shared by the progression
// engine, the persistence layer and the API.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ─── Difficulty ─────────────────────────────────────────────────────────────

// Difficulty is the effort tier of a task or quest.
// Ordered EASY < MEDIUM < HARD by both base XP and stat gain.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty accepts a tier name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", InvalidArgument("difficulty", fmt.Sprintf("unknown difficulty %q (want EASY, MEDIUM or HARD)", s))
	}
	return d, nil
}

// ─── Stat Category ──────────────────────────────────────────────────────────

// StatCategory is the RPG stat a completion trains.
type StatCategory string

const (
	StatIntelligence StatCategory = "INTELLIGENCE"
	StatStrength     StatCategory = "STRENGTH"
	StatDiscipline   StatCategory = "DISCIPLINE"
	StatWealth       StatCategory = "WEALTH"
)

// StatCategories lists every category.
var StatCategories = []StatCategory{StatIntelligence, StatStrength, StatDiscipline, StatWealth}

// Valid reports whether c is one of the four known categories.
func (c StatCategory) Valid() bool {
	switch c {
	case StatIntelligence, StatStrength, StatDiscipline, StatWealth:
		return true
	}
	return false
}

// ParseStatCategory accepts a category name in any case.
func ParseStatCategory(s string) (StatCategory, error) {
	c := StatCategory(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", InvalidArgument("category", fmt.Sprintf("unknown category %q (want INTELLIGENCE, STRENGTH, DISCIPLINE or WEALTH)", s))
	}
	return c, nil
}

// ─── Engine Values ──────────────────────────────────────────────────────────

// CompletionEvent is the transient input to the XP calculator.
type CompletionEvent struct {
	Difficulty    Difficulty `json:"difficulty"`
	ActualMinutes int        `json:"actualMinutes"`
	StreakDays    int        `json:"streakDays"`
	IsQuestBonus  bool       `json:"isQuestBonus"`
}

// ProgressionState is a user's cumulative progression snapshot.
// Level and Title are always derived from TotalXP.
type ProgressionState struct {
	TotalXP          int64   `json:"totalXp"`
	Level            int     `json:"level"`
	Title            string  `json:"title"`
	StatIntelligence float64 `json:"statIntelligence"`
	StatStrength     float64 `json:"statStrength"`
	StatDiscipline   float64 `json:"statDiscipline"`
	StatWealth       float64 `json:"statWealth"`
}

// Stat returns the value of the stat for category c.
func (s ProgressionState) Stat(c StatCategory) float64 {
	switch c {
	case StatIntelligence:
		return s.StatIntelligence
	case StatStrength:
		return s.StatStrength
	case StatDiscipline:
		return s.StatDiscipline
	case StatWealth:
		return s.StatWealth
	}
	panic(fmt.Sprintf("domain: unhandled stat category %q", c))
}

// AddStat increments the stat for category c by delta.
func (s *ProgressionState) AddStat(c StatCategory, delta float64) {
	switch c {
	case StatIntelligence:
		s.StatIntelligence += delta
	case StatStrength:
		s.StatStrength += delta
	case StatDiscipline:
		s.StatDiscipline += delta
	case StatWealth:
		s.StatWealth += delta
	default:
		panic(fmt.Sprintf("domain: unhandled stat category %q", c))
	}
}

// LevelInfo is the position of a total XP amount on the level curve.
type LevelInfo struct {
	Level          int   `json:"level"`
	XPIntoLevel    int64 `json:"xpIntoLevel"`
	XPForNextLevel int64 `json:"xpRequiredForNextLevel"`
}

// ProgressPct returns how far through the current level the user is (0-100).
func (l LevelInfo) ProgressPct() float64 {
	if l.XPForNextLevel <= 0 {
		return 0
	}
	return float64(l.XPIntoLevel) / float64(l.XPForNextLevel) * 100
}

// HabitStreakState is the streak bookkeeping carried by a habit task.
type HabitStreakState struct {
	LastCompletedAt *time.Time `json:"lastCompletedAt,omitempty"`
	StreakCurrent   int        `json:"streakCurrent"`
	StreakLongest   int        `json:"streakLongest"`
}
