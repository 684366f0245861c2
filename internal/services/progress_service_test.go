package services

import (
	"context"
	"testing"
	"time"

	"telar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProgressService(progressRepo *fakeProgressRepo, achievementRepo *fakeAchievementRepo, maturityRepo *fakeMaturityRepo) *progressService {
	logger := zap.NewNop()
	achievements := NewAchievementService(achievementRepo, maturityRepo, fakeCache{}, logger)
	service := NewProgressService(progressRepo, achievements, fakeCache{}, logger).(*progressService)
	return service
}

const testUserID = "7f9c24e5-2c33-4a0b-9f68-1c1a5de1a8d2"

func seedProgress(t *testing.T, service *progressService) *models.UserProgress {
	t.Helper()
	progress, err := service.Create(context.Background(), &CreateProgressRequest{UserID: testUserID})
	require.NoError(t, err)
	return progress
}

func TestUpdateProgressCreatesRowLazily(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})

	result, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{XPGained: 50})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Level)
	assert.Equal(t, 50, result.ExperiencePoints)
	assert.Equal(t, 100, result.NextLevelXP)
	assert.False(t, result.LeveledUp)
	assert.Empty(t, result.LevelsGained)
	assert.Equal(t, 1, result.CurrentStreak, "first activity should start the streak")

	stored, err := progressRepo.GetByUserID(context.Background(), testUserID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 50, stored.ExperiencePoints)
}

func TestUpdateProgressMultiLevelUp(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})

	// 260 XP from level 1: 100 to reach level 2, 150 to reach level 3,
	// 10 left over against the 225 needed for level 4.
	result, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{XPGained: 260})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Level)
	assert.Equal(t, 10, result.ExperiencePoints)
	assert.Equal(t, 225, result.NextLevelXP)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, []int{2, 3}, result.LevelsGained)
}

func TestUpdateProgressMissionAndTime(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})

	result, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{
		MissionCompleted: true,
		TimeSpent:        25,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CompletedMissions)

	stored, _ := progressRepo.GetByUserID(context.Background(), testUserID)
	assert.Equal(t, 25, stored.TotalTimeSpent)
}

func TestUpdateProgressRejectsNegativeXP(t *testing.T) {
	service := newTestProgressService(newFakeProgressRepo(), &fakeAchievementRepo{}, &fakeMaturityRepo{})

	_, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{XPGained: -10})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestUpdateProgressStreakContinuesNextDay(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})
	seedProgress(t, service)

	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return day1 }

	_, err := service.UpdateStreak(context.Background(), testUserID)
	require.NoError(t, err)

	// Same-day re-entry leaves the counters alone.
	service.now = func() time.Time { return day1.Add(8 * time.Hour) }
	result, err := service.UpdateStreak(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)

	// Activity late the next day still counts as consecutive.
	service.now = func() time.Time { return day1.Add(24*time.Hour + 14*time.Hour) }
	result, err = service.UpdateStreak(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)
}

func TestUpdateProgressStreakBreaksAfterGap(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})
	seedProgress(t, service)

	day1 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return day1 }
	_, err := service.UpdateStreak(context.Background(), testUserID)
	require.NoError(t, err)

	service.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	_, err = service.UpdateStreak(context.Background(), testUserID)
	require.NoError(t, err)

	// Three days of silence reset the streak but keep the record.
	service.now = func() time.Time { return day1.AddDate(0, 0, 4) }
	result, err := service.UpdateStreak(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)
}

func TestUpdateProgressUnlocksAchievements(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	achievementRepo := &fakeAchievementRepo{catalog: defaultCatalog()}
	service := newTestProgressService(progressRepo, achievementRepo, &fakeMaturityRepo{})

	result, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{
		MissionCompleted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first_mission"}, unlockedIDs(result.UnlockedAchievements))

	// The same mission count must not unlock it twice.
	result, err = service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{
		MissionCompleted: true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.UnlockedAchievements)
}

func TestUpdateProgressUnlocksLevelAchievement(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	achievementRepo := &fakeAchievementRepo{catalog: defaultCatalog()}
	service := newTestProgressService(progressRepo, achievementRepo, &fakeMaturityRepo{})

	// 100+150+225+337 = 812 XP carries a fresh user to level 5.
	result, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{XPGained: 812})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Level)
	assert.Contains(t, unlockedIDs(result.UnlockedAchievements), "level_5")
}

func TestUpdateProgressOnboardingAchievement(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	achievementRepo := &fakeAchievementRepo{catalog: defaultCatalog()}
	service := newTestProgressService(progressRepo, achievementRepo, &fakeMaturityRepo{exists: true})

	result, err := service.UpdateProgress(context.Background(), testUserID, &UpdateProgressRequest{})
	require.NoError(t, err)
	assert.Contains(t, unlockedIDs(result.UnlockedAchievements), "onboarding_complete")
}

func TestAddExperienceRequiresPositivePoints(t *testing.T) {
	service := newTestProgressService(newFakeProgressRepo(), &fakeAchievementRepo{}, &fakeMaturityRepo{})
	seedProgress(t, service)

	_, err := service.AddExperience(context.Background(), testUserID, &AddExperienceRequest{Points: 0})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	result, err := service.AddExperience(context.Background(), testUserID, &AddExperienceRequest{Points: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, result.ExperiencePoints)
}

func TestAddExperienceLevelsUpWithoutAchievementCheck(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	achievementRepo := &fakeAchievementRepo{catalog: defaultCatalog()}
	service := newTestProgressService(progressRepo, achievementRepo, &fakeMaturityRepo{})
	seedProgress(t, service)

	// Enough XP for level 5, which the catalog would reward if evaluated.
	result, err := service.AddExperience(context.Background(), testUserID, &AddExperienceRequest{Points: 812})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Level)
	assert.True(t, result.LeveledUp)
	assert.Empty(t, result.UnlockedAchievements)
	assert.Empty(t, achievementRepo.unlocked)
}

func TestCompleteMissionOnlyIncrementsCounter(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	achievementRepo := &fakeAchievementRepo{catalog: defaultCatalog()}
	service := newTestProgressService(progressRepo, achievementRepo, &fakeMaturityRepo{})
	seedProgress(t, service)

	result, err := service.CompleteMission(context.Background(), testUserID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CompletedMissions)
	assert.Equal(t, 0, result.CurrentStreak, "completeMission must not touch the streak")
	assert.Empty(t, result.UnlockedAchievements, "completeMission must not evaluate achievements")
	assert.Empty(t, achievementRepo.unlocked)

	stored, _ := progressRepo.GetByUserID(context.Background(), testUserID)
	assert.Nil(t, stored.LastActivityDate)
}

func TestAddTimeSpentOnlyAddsMinutes(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{catalog: defaultCatalog()}, &fakeMaturityRepo{})
	seedProgress(t, service)

	result, err := service.AddTimeSpent(context.Background(), testUserID, &AddTimeSpentRequest{Minutes: 25})
	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Empty(t, result.UnlockedAchievements)

	stored, _ := progressRepo.GetByUserID(context.Background(), testUserID)
	assert.Equal(t, 25, stored.TotalTimeSpent)
	assert.Equal(t, 0, stored.CompletedMissions)
}

func TestSingleOperationsRequireExistingRow(t *testing.T) {
	service := newTestProgressService(newFakeProgressRepo(), &fakeAchievementRepo{}, &fakeMaturityRepo{})

	_, err := service.CompleteMission(context.Background(), testUserID)
	assert.True(t, IsNotFoundError(err))

	_, err = service.AddExperience(context.Background(), testUserID, &AddExperienceRequest{Points: 10})
	assert.True(t, IsNotFoundError(err))

	_, err = service.UpdateStreak(context.Background(), testUserID)
	assert.True(t, IsNotFoundError(err))

	_, err = service.AddTimeSpent(context.Background(), testUserID, &AddTimeSpentRequest{Minutes: 5})
	assert.True(t, IsNotFoundError(err))
}

func TestCreateProgressConflictsOnDuplicateUser(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})

	_, err := service.Create(context.Background(), &CreateProgressRequest{UserID: testUserID})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), &CreateProgressRequest{UserID: testUserID})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestGetByUserIDReturnsNilWithoutRow(t *testing.T) {
	service := newTestProgressService(newFakeProgressRepo(), &fakeAchievementRepo{}, &fakeMaturityRepo{})

	progress, err := service.GetByUserID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Nil(t, progress)
}

func TestUpdateFieldsRecomputesNextLevelXP(t *testing.T) {
	progressRepo := newFakeProgressRepo()
	service := newTestProgressService(progressRepo, &fakeAchievementRepo{}, &fakeMaturityRepo{})

	created, err := service.Create(context.Background(), &CreateProgressRequest{UserID: testUserID})
	require.NoError(t, err)

	level := 3
	updated, err := service.Update(context.Background(), created.ID, &UpdateProgressFieldsRequest{Level: &level})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Level)
	assert.Equal(t, 225, updated.NextLevelXP)
}
