package progression

import (
	"math"

	"github.com/lifexp-app/lifexp/internal/domain"
)

// Award is the outcome of AwardXP.
type Award struct {
	State       domain.ProgressionState
	XP          int64
	StatGain    float64
	LevelBefore int
	LeveledUp   bool
}

// AwardXP adds xp to state and grows the stat for category by the
// difficulty's stat gain. Discipline also gains DisciplineBonus on every
// award, stacking with the regular gain when category is DISCIPLINE.
// Level and title are recomputed from the new total, which saturates at
// math.MaxInt64. category and difficulty must already be validated.
func AwardXP(state domain.ProgressionState, xp int64, category domain.StatCategory, difficulty domain.Difficulty) Award {
	before := ComputeLevel(state.TotalXP).Level

	next := state
	next.TotalXP = addXP(state.TotalXP, xp)
	gain := StatGain(difficulty)
	next.AddStat(category, gain)
	next.AddStat(domain.StatDiscipline, DisciplineBonus)
	next = Derive(next)

	return Award{
		State:       next,
		XP:          xp,
		StatGain:    gain,
		LevelBefore: before,
		LeveledUp:   next.Level > before,
	}
}

// Derive fills in Level and Title from TotalXP.
func Derive(state domain.ProgressionState) domain.ProgressionState {
	state.Level = ComputeLevel(state.TotalXP).Level
	state.Title = TitleForLevel(state.Level)
	return state
}

func addXP(total, xp int64) int64 {
	if xp > 0 && total > math.MaxInt64-xp {
		return math.MaxInt64
	}
	return total + xp
}
