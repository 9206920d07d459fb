package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		wantMsg string
	}{
		{
			name:    "message only",
			err:     &Error{Kind: KindConflict, Message: "quest already completed"},
			wantMsg: "quest already completed",
		},
		{
			name:    "wrapped only",
			err:     &Error{Kind: KindNotFound, Err: errors.New("task not found: t-1")},
			wantMsg: "task not found: t-1",
		},
		{
			name:    "message and wrapped",
			err:     &Error{Kind: KindConflict, Message: "progression update", Err: ErrStaleWrite},
			wantMsg: "progression update: stale write: row version changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestNotFound_WrapsSentinel(t *testing.T) {
	err := NotFound(ErrTaskNotFound, "t-42")

	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, "task not found: t-42", err.Error())
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid argument", InvalidArgument("minutes", "must be >= 0"), KindInvalidArgument},
		{"not found", NotFound(ErrUserNotFound, "u-1"), KindNotFound},
		{"conflict", Conflict("busy", ErrStaleWrite), KindConflict},
		{"wrapped kinded", fmt.Errorf("complete task: %w", Conflict("busy", nil)), KindConflict},
		{"plain error", errors.New("disk on fire"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, in := range []string{"EASY", "medium", " Hard "} {
		d, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.True(t, d.Valid())
	}

	_, err := ParseDifficulty("LEGENDARY")
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestParseStatCategory(t *testing.T) {
	c, err := ParseStatCategory("wealth")
	require.NoError(t, err)
	assert.Equal(t, StatWealth, c)

	_, err = ParseStatCategory("CHARISMA")
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestProgressionState_AddStat(t *testing.T) {
	var s ProgressionState
	for _, c := range StatCategories {
		s.AddStat(c, 1.5)
	}
	s.AddStat(StatDiscipline, 0.25)

	assert.Equal(t, 1.5, s.Stat(StatIntelligence))
	assert.Equal(t, 1.5, s.Stat(StatStrength))
	assert.Equal(t, 1.75, s.Stat(StatDiscipline))
	assert.Equal(t, 1.5, s.Stat(StatWealth))
}

func TestUser_Location(t *testing.T) {
	assert.Equal(t, "UTC", User{}.Location().String())
	assert.Equal(t, "UTC", User{Timezone: "Not/AZone"}.Location().String())
	assert.Equal(t, "Europe/Berlin", User{Timezone: "Europe/Berlin"}.Location().String())
}

func TestLevelInfo_ProgressPct(t *testing.T) {
	assert.Equal(t, 50.0, LevelInfo{Level: 1, XPIntoLevel: 50, XPForNextLevel: 100}.ProgressPct())
	assert.Equal(t, 0.0, LevelInfo{}.ProgressPct())
}
