package services

import (
	"context"
	"database/sql"
	"time"

	"telar/internal/cache"
	"telar/internal/gamification"
	"telar/internal/models"
	"telar/internal/repositories"
	"telar/internal/validation"

	"go.uber.org/zap"
)

const leaderboardCacheKey = "progress:leaderboard"

type progressService struct {
	progressRepo repositories.ProgressRepository
	achievements AchievementService
	cache        cache.Cache
	logger       *zap.Logger
	now          func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	progressRepo repositories.ProgressRepository,
	achievements AchievementService,
	cacheClient cache.Cache,
	logger *zap.Logger,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		achievements: achievements,
		cache:        cacheClient,
		logger:       logger,
		now:          time.Now,
	}
}

// ===============================
// PROGRESS UPDATE PIPELINE
// ===============================

// UpdateProgress is the single write path for activity outcomes. Inside one
// transaction it locks (or lazily creates) the user's row, applies XP with
// level-up rollover, bumps the mission counter and the daily streak, then
// persists. Achievement evaluation runs after commit on the in-memory state:
// a failure there never undoes the progress write.
func (s *progressService) UpdateProgress(ctx context.Context, userID string, req *UpdateProgressRequest) (*models.ProgressUpdateResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid progress update", err)
	}

	var progress *models.UserProgress
	var levelUp gamification.LevelUpResult

	err := s.progressRepo.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		progress, err = s.progressRepo.GetOrCreateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		levelUp = gamification.ApplyExperience(
			progress.Level, progress.ExperiencePoints, progress.NextLevelXP, req.XPGained)
		progress.Level = levelUp.Level
		progress.ExperiencePoints = levelUp.ExperiencePoints
		progress.NextLevelXP = levelUp.NextLevelXP

		if req.MissionCompleted {
			progress.CompletedMissions++
		}
		if req.TimeSpent > 0 {
			progress.TotalTimeSpent += req.TimeSpent
		}

		streak := gamification.UpdateStreak(
			s.now(), progress.LastActivityDate, progress.CurrentStreak, progress.LongestStreak)
		progress.CurrentStreak = streak.CurrentStreak
		progress.LongestStreak = streak.LongestStreak
		progress.LastActivityDate = &streak.LastActivityDate

		return s.progressRepo.SaveTx(ctx, tx, progress)
	})
	if err != nil {
		s.logger.Error("Failed to update progress",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, NewInternalError("Failed to update progress")
	}

	s.invalidateCache(ctx, userID)

	unlocked := s.achievements.CheckAndUnlock(ctx, userID, gamification.ProgressSnapshot{
		Level:             progress.Level,
		CompletedMissions: progress.CompletedMissions,
		CurrentStreak:     progress.CurrentStreak,
	})

	return &models.ProgressUpdateResult{
		Level:                progress.Level,
		ExperiencePoints:     progress.ExperiencePoints,
		NextLevelXP:          progress.NextLevelXP,
		LeveledUp:            levelUp.LeveledUp,
		LevelsGained:         levelUp.LevelsGained,
		CompletedMissions:    progress.CompletedMissions,
		CurrentStreak:        progress.CurrentStreak,
		LongestStreak:        progress.LongestStreak,
		UnlockedAchievements: unlocked,
	}, nil
}

// ===============================
// SINGLE-PURPOSE OPERATIONS
// ===============================

// The operations below mutate exactly one aspect of the row. Unlike
// UpdateProgress they never create the row, never recompute the streak as a
// side effect, and never evaluate achievements.

// AddExperience grants XP with the same level-up rollover as UpdateProgress.
func (s *progressService) AddExperience(ctx context.Context, userID string, req *AddExperienceRequest) (*models.ProgressUpdateResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid experience amount", err)
	}

	var levelUp gamification.LevelUpResult
	progress, err := s.directUpdate(ctx, userID, func(progress *models.UserProgress) {
		levelUp = gamification.ApplyExperience(
			progress.Level, progress.ExperiencePoints, progress.NextLevelXP, req.Points)
		progress.Level = levelUp.Level
		progress.ExperiencePoints = levelUp.ExperiencePoints
		progress.NextLevelXP = levelUp.NextLevelXP
	})
	if err != nil {
		return nil, err
	}
	return directResult(progress, levelUp), nil
}

func (s *progressService) CompleteMission(ctx context.Context, userID string) (*models.ProgressUpdateResult, error) {
	progress, err := s.directUpdate(ctx, userID, func(progress *models.UserProgress) {
		progress.CompletedMissions++
	})
	if err != nil {
		return nil, err
	}
	return directResult(progress, gamification.LevelUpResult{}), nil
}

func (s *progressService) UpdateStreak(ctx context.Context, userID string) (*models.ProgressUpdateResult, error) {
	progress, err := s.directUpdate(ctx, userID, func(progress *models.UserProgress) {
		streak := gamification.UpdateStreak(
			s.now(), progress.LastActivityDate, progress.CurrentStreak, progress.LongestStreak)
		progress.CurrentStreak = streak.CurrentStreak
		progress.LongestStreak = streak.LongestStreak
		progress.LastActivityDate = &streak.LastActivityDate
	})
	if err != nil {
		return nil, err
	}
	return directResult(progress, gamification.LevelUpResult{}), nil
}

func (s *progressService) AddTimeSpent(ctx context.Context, userID string, req *AddTimeSpentRequest) (*models.ProgressUpdateResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid time amount", err)
	}

	progress, err := s.directUpdate(ctx, userID, func(progress *models.UserProgress) {
		progress.TotalTimeSpent += req.Minutes
	})
	if err != nil {
		return nil, err
	}
	return directResult(progress, gamification.LevelUpResult{}), nil
}

// directUpdate loads the user's existing row, applies the mutation, and
// saves. A missing row is the caller's 404, not a reason to create one.
func (s *progressService) directUpdate(ctx context.Context, userID string, mutate func(*models.UserProgress)) (*models.UserProgress, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load progress",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, NewInternalError("Failed to update progress")
	}
	if progress == nil {
		return nil, EntityNotFoundError("Progress", userID)
	}

	mutate(progress)

	if err := s.progressRepo.Save(ctx, progress); err != nil {
		s.logger.Error("Failed to save progress",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, NewInternalError("Failed to update progress")
	}

	s.invalidateCache(ctx, userID)
	return progress, nil
}

func directResult(progress *models.UserProgress, levelUp gamification.LevelUpResult) *models.ProgressUpdateResult {
	return &models.ProgressUpdateResult{
		Level:                progress.Level,
		ExperiencePoints:     progress.ExperiencePoints,
		NextLevelXP:          progress.NextLevelXP,
		LeveledUp:            levelUp.LeveledUp,
		LevelsGained:         levelUp.LevelsGained,
		CompletedMissions:    progress.CompletedMissions,
		CurrentStreak:        progress.CurrentStreak,
		LongestStreak:        progress.LongestStreak,
		UnlockedAchievements: []models.UnlockedAchievement{},
	}
}

// ===============================
// READ SURFACE
// ===============================

// GetByUserID returns nil when the user has no progress row yet; callers
// decide whether that maps to 404 or an empty default.
func (s *progressService) GetByUserID(ctx context.Context, userID string) (*models.UserProgress, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get progress",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, NewInternalError("Failed to get progress")
	}
	return progress, nil
}

func (s *progressService) GetLeaderboard(ctx context.Context, limit int) ([]*models.UserProgress, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cacheKey := leaderboardCacheKey

	var cached []*models.UserProgress
	if s.cache.Get(ctx, cacheKey, &cached) && len(cached) >= limit {
		return cached[:limit], nil
	}

	entries, err := s.progressRepo.Leaderboard(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to load leaderboard", zap.Error(err))
		return nil, NewInternalError("Failed to load leaderboard")
	}
	if entries == nil {
		entries = []*models.UserProgress{}
	}

	_ = s.cache.Set(ctx, cacheKey, entries, 5*time.Minute)
	return entries, nil
}

// ===============================
// ADMIN SURFACE
// ===============================

func (s *progressService) Create(ctx context.Context, req *CreateProgressRequest) (*models.UserProgress, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid progress data", err)
	}

	existing, err := s.progressRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("Failed to check existing progress", zap.Error(err))
		return nil, NewInternalError("Failed to create progress")
	}
	if existing != nil {
		return nil, EntityAlreadyExistsError("Progress", "user_id", req.UserID)
	}

	progress := models.NewUserProgress(req.UserID)
	if req.Level > 0 {
		progress.Level = req.Level
		progress.NextLevelXP = gamification.NextLevelXP(req.Level)
	}
	progress.ExperiencePoints = req.ExperiencePoints
	progress.CompletedMissions = req.CompletedMissions
	progress.CurrentStreak = req.CurrentStreak
	progress.LongestStreak = req.LongestStreak
	progress.TotalTimeSpent = req.TotalTimeSpent

	if err := s.progressRepo.Create(ctx, progress); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, EntityAlreadyExistsError("Progress", "user_id", req.UserID)
		}
		s.logger.Error("Failed to create progress", zap.Error(err))
		return nil, NewInternalError("Failed to create progress")
	}

	s.invalidateCache(ctx, req.UserID)
	return progress, nil
}

func (s *progressService) GetByID(ctx context.Context, id string) (*models.UserProgress, error) {
	progress, err := s.progressRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get progress", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to get progress")
	}
	if progress == nil {
		return nil, EntityNotFoundError("Progress", id)
	}
	return progress, nil
}

func (s *progressService) List(ctx context.Context) ([]*models.UserProgress, error) {
	entries, err := s.progressRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list progress", zap.Error(err))
		return nil, NewInternalError("Failed to list progress")
	}
	if entries == nil {
		entries = []*models.UserProgress{}
	}
	return entries, nil
}

func (s *progressService) Update(ctx context.Context, id string, req *UpdateProgressFieldsRequest) (*models.UserProgress, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid progress data", err)
	}

	progress, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Level != nil {
		fields["level"] = *req.Level
		fields["next_level_xp"] = gamification.NextLevelXP(*req.Level)
	}
	if req.ExperiencePoints != nil {
		fields["experience_points"] = *req.ExperiencePoints
	}
	if req.CompletedMissions != nil {
		fields["completed_missions"] = *req.CompletedMissions
	}
	if req.CurrentStreak != nil {
		fields["current_streak"] = *req.CurrentStreak
	}
	if req.LongestStreak != nil {
		fields["longest_streak"] = *req.LongestStreak
	}
	if req.TotalTimeSpent != nil {
		fields["total_time_spent"] = *req.TotalTimeSpent
	}
	if len(fields) == 0 {
		return progress, nil
	}

	if err := s.progressRepo.UpdateFields(ctx, id, fields); err != nil {
		s.logger.Error("Failed to update progress fields", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to update progress")
	}

	s.invalidateCache(ctx, progress.UserID)
	return s.GetByID(ctx, id)
}

func (s *progressService) Delete(ctx context.Context, id string) error {
	progress, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.progressRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete progress", zap.String("id", id), zap.Error(err))
		return NewInternalError("Failed to delete progress")
	}

	s.invalidateCache(ctx, progress.UserID)
	return nil
}

func (s *progressService) invalidateCache(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, "progress:user:"+userID); err != nil {
		s.logger.Warn("Failed to invalidate progress cache",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
