// Package progression is the LifeXP progression and streak engine.
//
// Every function here is a pure transform of its inputs: no I/O, no clocks,
// no shared state. Callers own persistence and pass "now" explicitly, so the
// functions can be called concurrently without coordination.
//
// The flow for one completion is:
//
//	event -> ComputeTaskXP -> AwardXP(state) -> new state (level/title derived)
//
// with AdvanceStreak run first when the completed task is a habit.
package progression
