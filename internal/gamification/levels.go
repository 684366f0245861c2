// Package gamification holds the pure leveling, streak and achievement rules of
// the progress engine. Everything here is deterministic and free of I/O so the
// same rules can be unit-tested in isolation and reused from any service.
package gamification

import "math"

// BaseLevelXP is the XP required to advance from level 1.
const BaseLevelXP = 100

// levelGrowthFactor is the per-level multiplier of the XP curve.
const levelGrowthFactor = 1.5

// NextLevelXP returns the XP threshold to advance from the given level:
// floor(100 * 1.5^(level-1)). Levels below 1 are clamped to 1.
func NextLevelXP(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(BaseLevelXP * math.Pow(levelGrowthFactor, float64(level-1))))
}

// LevelUpResult describes the outcome of applying gained XP to a progress state.
type LevelUpResult struct {
	Level            int
	ExperiencePoints int
	NextLevelXP      int
	LeveledUp        bool
	LevelsGained     []int
}

// ApplyExperience adds xpGained to the current XP and rolls any overflow into
// level-ups. The loop terminates because NextLevelXP is strictly positive and
// grows with each level. After it settles, ExperiencePoints < NextLevelXP.
func ApplyExperience(level, experiencePoints, nextLevelXP, xpGained int) LevelUpResult {
	result := LevelUpResult{
		Level:            level,
		ExperiencePoints: experiencePoints + xpGained,
		NextLevelXP:      nextLevelXP,
		LevelsGained:     []int{},
	}

	for result.ExperiencePoints >= result.NextLevelXP {
		result.ExperiencePoints -= result.NextLevelXP
		result.Level++
		result.NextLevelXP = NextLevelXP(result.Level)
		result.LeveledUp = true
		result.LevelsGained = append(result.LevelsGained, result.Level)
	}

	return result
}
