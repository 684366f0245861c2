package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpdateStreak_FirstActivity(t *testing.T) {
	today := day(2026, time.March, 10)

	result := UpdateStreak(today, nil, 0, 0)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 1, result.LongestStreak)
	assert.Equal(t, today, result.LastActivityDate)
}

func TestUpdateStreak_FirstActivityKeepsHigherLongest(t *testing.T) {
	// Admin-seeded longest streak should not be lowered by a fresh start.
	result := UpdateStreak(day(2026, time.March, 10), nil, 0, 7)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 7, result.LongestStreak)
}

func TestUpdateStreak_ConsecutiveDay(t *testing.T) {
	yesterday := day(2026, time.March, 9)
	today := day(2026, time.March, 10)

	result := UpdateStreak(today, &yesterday, 4, 4)

	assert.Equal(t, 5, result.CurrentStreak)
	assert.Equal(t, 5, result.LongestStreak)
}

func TestUpdateStreak_ConsecutiveDayDoesNotLowerLongest(t *testing.T) {
	yesterday := day(2026, time.March, 9)

	result := UpdateStreak(day(2026, time.March, 10), &yesterday, 2, 10)

	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 10, result.LongestStreak)
}

func TestUpdateStreak_SameDayIsIdempotent(t *testing.T) {
	today := day(2026, time.March, 10)
	alreadyToday := today

	result := UpdateStreak(today, &alreadyToday, 6, 9)

	assert.Equal(t, 6, result.CurrentStreak)
	assert.Equal(t, 9, result.LongestStreak)
	assert.Equal(t, today, result.LastActivityDate)
}

func TestUpdateStreak_GapBreaksStreak(t *testing.T) {
	threeDaysAgo := day(2026, time.March, 7)

	result := UpdateStreak(day(2026, time.March, 10), &threeDaysAgo, 12, 12)

	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 12, result.LongestStreak, "longest survives breakage")
}

// Activities late at night and early the next morning are consecutive calendar
// days even though less than 24 hours apart.
func TestUpdateStreak_CalendarDaysNotDurations(t *testing.T) {
	lastNight := time.Date(2026, time.March, 9, 23, 50, 0, 0, time.UTC)
	thisMorning := time.Date(2026, time.March, 10, 0, 10, 0, 0, time.UTC)

	result := UpdateStreak(thisMorning, &lastNight, 1, 1)

	assert.Equal(t, 2, result.CurrentStreak)
}

func TestUpdateStreak_RunTwiceSameDay(t *testing.T) {
	yesterday := day(2026, time.March, 9)
	today := day(2026, time.March, 10)

	first := UpdateStreak(today, &yesterday, 1, 1)
	second := UpdateStreak(today, &first.LastActivityDate, first.CurrentStreak, first.LongestStreak)

	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, first.LongestStreak, second.LongestStreak)
}
