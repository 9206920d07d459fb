// Package metrics provides Prometheus metrics for LifeXP:
// completions, XP flow, level-ups, write conflicts, quest generation and HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lifexp"

// ─── Progression ────────────────────────────────────────────────────────────

// CompletionsTotal counts completions by source (task|quest) and difficulty.
var CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "completions_total",
	Help:      "Total task and quest completions.",
}, []string{"source", "difficulty"})

// XPAwarded counts XP handed out across all users.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "xp_awarded_total",
	Help:      "Total XP awarded.",
})

// LevelUps counts completions that raised a user's level.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "level_ups_total",
	Help:      "Total level-ups.",
})

// HabitStreak records the streak reached on each habit completion.
var HabitStreak = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "habit_streak_days",
	Help:      "Habit streak length after a completion.",
	Buckets:   []float64{1, 2, 3, 5, 7, 14, 21, 30, 60, 100},
})

// ─── Persistence ────────────────────────────────────────────────────────────

// WriteConflicts counts optimistic-lock misses, by operation.
var WriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "write_conflicts_total",
	Help:      "Read-modify-write cycles retried after a version conflict.",
}, []string{"op"})

// CompletionDuration tracks the full completion cycle including retries.
var CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "completion_duration_seconds",
	Help:      "Time to record a completion, retries included.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"source"})

// ─── Quests ─────────────────────────────────────────────────────────────────

// QuestsGenerated counts daily quests issued.
var QuestsGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "quests_generated_total",
	Help:      "Total daily quests issued.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "Total API requests.",
}, []string{"route", "code"})
