// file: internal/gamification/criteria.go
package gamification

import "telar/internal/models"

// ProgressSnapshot is the just-computed progress state an achievement criterion
// is evaluated against. The evaluator uses in-memory values, never a re-read.
type ProgressSnapshot struct {
	Level               int
	CompletedMissions   int
	CurrentStreak       int
	OnboardingCompleted bool
}

// CriterionMet reports whether the snapshot satisfies the unlock criterion.
// Unknown criterion types never unlock.
func CriterionMet(criteria models.AchievementCriteria, snapshot ProgressSnapshot) bool {
	switch criteria.Type {
	case models.CriteriaMissionsCompleted:
		return snapshot.CompletedMissions >= criteria.Count
	case models.CriteriaLevelReached:
		return snapshot.Level >= criteria.Level
	case models.CriteriaStreakReached:
		return snapshot.CurrentStreak >= criteria.Days
	case models.CriteriaOnboardingComplete:
		return snapshot.OnboardingCompleted
	default:
		return false
	}
}
