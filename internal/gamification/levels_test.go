package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextLevelXP(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{1, 100},
		{2, 150},
		{3, 225},
		{4, 337},
		{5, 506},
		{0, 100},  // clamped to level 1
		{-3, 100}, // clamped to level 1
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NextLevelXP(tt.level), "level %d", tt.level)
	}
}

func TestApplyExperience_NoLevelUp(t *testing.T) {
	result := ApplyExperience(1, 40, 100, 30)

	assert.Equal(t, 1, result.Level)
	assert.Equal(t, 70, result.ExperiencePoints)
	assert.Equal(t, 100, result.NextLevelXP)
	assert.False(t, result.LeveledUp)
	assert.Empty(t, result.LevelsGained)
}

func TestApplyExperience_SingleLevelUp(t *testing.T) {
	result := ApplyExperience(1, 90, 100, 20)

	assert.Equal(t, 2, result.Level)
	assert.Equal(t, 10, result.ExperiencePoints)
	assert.Equal(t, 150, result.NextLevelXP)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, []int{2}, result.LevelsGained)
}

// Granting 260 XP from a fresh level 1 state consumes 100 (level 2), then 150
// (level 3), leaving 10 XP against the 225-point level 3 threshold.
func TestApplyExperience_MultiLevelUpInOneCall(t *testing.T) {
	result := ApplyExperience(1, 0, 100, 260)

	assert.Equal(t, 3, result.Level)
	assert.Equal(t, 10, result.ExperiencePoints)
	assert.Equal(t, 225, result.NextLevelXP)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, []int{2, 3}, result.LevelsGained)
}

func TestApplyExperience_ExactThresholdRollsOver(t *testing.T) {
	result := ApplyExperience(1, 0, 100, 100)

	assert.Equal(t, 2, result.Level)
	assert.Equal(t, 0, result.ExperiencePoints)
	assert.Equal(t, 150, result.NextLevelXP)
	assert.True(t, result.LeveledUp)
}

func TestApplyExperience_XPAlwaysBelowThreshold(t *testing.T) {
	for _, gained := range []int{0, 1, 99, 100, 101, 250, 1000, 50000} {
		result := ApplyExperience(1, 0, 100, gained)
		assert.Less(t, result.ExperiencePoints, result.NextLevelXP, "xpGained=%d", gained)
		assert.GreaterOrEqual(t, result.Level, 1, "xpGained=%d", gained)
	}
}
