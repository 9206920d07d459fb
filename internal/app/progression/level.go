package progression

import (
	"math"
	"math/bits"

	"github.com/lifexp-app/lifexp/internal/domain"
)

const (
	levelBaseXP = 100 // XP to go from level 1 to 2
	levelStepXP = 35  // extra XP needed per further level
)

// XPNeeded returns the XP required to advance from level to level+1.
func XPNeeded(level int) int64 {
	if level < 1 {
		level = 1
	}
	return levelBaseXP + int64(level-1)*levelStepXP
}

// XPAtLevelStart returns the cumulative XP at which level begins, or
// math.MaxInt64 when that exceeds the int64 range.
func XPAtLevelStart(level int) int64 {
	if level <= 1 {
		return 0
	}
	c, ok := cumulativeXP(int64(level - 1))
	if !ok {
		return math.MaxInt64
	}
	return c
}

// cumulativeXP is the XP needed to gain n levels from level 1:
// 100n + 35n(n-1)/2. ok is false when the result does not fit in an int64.
func cumulativeXP(n int64) (xp int64, ok bool) {
	if n <= 0 {
		return 0, true
	}
	u := uint64(n)
	// n(n-1) is always even; halve whichever factor is.
	var tri uint64
	var hi uint64
	if u%2 == 0 {
		hi, tri = bits.Mul64(u/2, u-1)
	} else {
		hi, tri = bits.Mul64(u, (u-1)/2)
	}
	if hi != 0 {
		return 0, false
	}
	hi, step := bits.Mul64(tri, levelStepXP)
	if hi != 0 {
		return 0, false
	}
	hi, base := bits.Mul64(u, levelBaseXP)
	if hi != 0 {
		return 0, false
	}
	sum, carry := bits.Add64(step, base, 0)
	if carry != 0 || sum > math.MaxInt64 {
		return 0, false
	}
	return int64(sum), true
}

// reached reports whether totalXP covers n completed levels.
func reached(n, totalXP int64) bool {
	c, ok := cumulativeXP(n)
	return ok && c <= totalXP
}

// ComputeLevel places totalXP on the level curve. Level 1 starts at 0 XP and
// advancing from L to L+1 costs XPNeeded(L). Negative XP is treated as 0.
//
// The number of completed levels is the largest n with cumulativeXP(n) <= totalXP,
// found by inverting the quadratic and then corrected with exact integer math.
func ComputeLevel(totalXP int64) domain.LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	// 17.5n² + 82.5n - x <= 0
	a, b := float64(levelStepXP)/2, float64(levelBaseXP)-float64(levelStepXP)/2
	n := int64((-b + math.Sqrt(b*b+4*a*float64(totalXP))) / (2 * a))
	if n < 0 {
		n = 0
	}
	for reached(n+1, totalXP) {
		n++
	}
	for n > 0 && !reached(n, totalXP) {
		n--
	}

	level := int(n) + 1
	start, _ := cumulativeXP(n)
	return domain.LevelInfo{
		Level:          level,
		XPIntoLevel:    totalXP - start,
		XPForNextLevel: XPNeeded(level),
	}
}
