package progression

import (
	"fmt"
	"math"

	"github.com/lifexp-app/lifexp/internal/domain"
)

const (
	durationBonusCap = 20
	streakBonusCap   = 10.0
	streakBonusPer   = 0.5
	questMultiplier  = 1.25
)

// ComputeTaskXP returns the XP earned by one completion.
//
//	base + min(floor(minutes/10)*2, 20) + min(streak*0.5, 10)
//
// multiplied by 1.25 for quests before flooring. Negative minutes or streak
// days and unknown difficulties are rejected as invalid arguments.
func ComputeTaskXP(ev domain.CompletionEvent) (int64, error) {
	if !ev.Difficulty.Valid() {
		return 0, domain.InvalidArgument("difficulty", fmt.Sprintf("unknown difficulty %q", ev.Difficulty))
	}
	if ev.ActualMinutes < 0 {
		return 0, domain.InvalidArgument("actualMinutes", fmt.Sprintf("must be >= 0, got %d", ev.ActualMinutes))
	}
	if ev.StreakDays < 0 {
		return 0, domain.InvalidArgument("streakDays", fmt.Sprintf("must be >= 0, got %d", ev.StreakDays))
	}

	durationBonus := min((ev.ActualMinutes/10)*2, durationBonusCap)
	streakBonus := math.Min(float64(ev.StreakDays)*streakBonusPer, streakBonusCap)

	total := float64(BaseXP(ev.Difficulty)) + float64(durationBonus) + streakBonus
	if ev.IsQuestBonus {
		total *= questMultiplier
	}
	return int64(math.Floor(total)), nil
}
