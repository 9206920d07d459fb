package progression

import (
	"fmt"

	"github.com/lifexp-app/lifexp/internal/domain"
)

// DisciplineBonus is added to Discipline on every completion, whatever the category.
const DisciplineBonus = 0.25

// BaseXP returns the base XP awarded for a completion of difficulty d.
func BaseXP(d domain.Difficulty) int64 {
	switch d {
	case domain.DifficultyEasy:
		return 10
	case domain.DifficultyMedium:
		return 25
	case domain.DifficultyHard:
		return 50
	}
	panic(fmt.Sprintf("progression: unhandled difficulty %q", d))
}

// StatGain returns how much the category stat grows per completion of difficulty d.
func StatGain(d domain.Difficulty) float64 {
	switch d {
	case domain.DifficultyEasy:
		return 1
	case domain.DifficultyMedium:
		return 2
	case domain.DifficultyHard:
		return 3
	}
	panic(fmt.Sprintf("progression: unhandled difficulty %q", d))
}
