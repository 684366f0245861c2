// file: internal/gamification/streak.go
package gamification

import "time"

// StreakResult is the recomputed streak state after an activity on `today`.
type StreakResult struct {
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate time.Time
}

// UpdateStreak applies the day-difference streak rule for an activity happening
// on `today`. The rule is idempotent per calendar day:
//
//   - no prior activity: streak starts at 1
//   - last activity exactly 1 calendar day before today: streak continues
//   - last activity today: counters unchanged (same-day re-entry)
//   - gap of more than 1 day: streak resets to 1, longest is kept
//
// lastActivityDate is always re-affirmed to today, including on the same-day
// branch. Comparisons are done on calendar days in today's location, not on
// raw durations, so activities at 23:59 and 00:01 still count as consecutive
// days.
func UpdateStreak(today time.Time, lastActivity *time.Time, currentStreak, longestStreak int) StreakResult {
	result := StreakResult{
		CurrentStreak:    currentStreak,
		LongestStreak:    longestStreak,
		LastActivityDate: truncateToDay(today),
	}

	if lastActivity == nil {
		result.CurrentStreak = 1
		if result.LongestStreak < 1 {
			result.LongestStreak = 1
		}
		return result
	}

	switch daysBetween(*lastActivity, today) {
	case 0:
		// Already counted today.
	case 1:
		result.CurrentStreak++
		if result.CurrentStreak > result.LongestStreak {
			result.LongestStreak = result.CurrentStreak
		}
	default:
		result.CurrentStreak = 1
	}

	return result
}

// daysBetween returns the number of calendar days from a to b, evaluated in
// b's location.
func daysBetween(a, b time.Time) int {
	loc := b.Location()
	a = truncateToDay(a.In(loc))
	b = truncateToDay(b)
	return int(b.Sub(a).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
