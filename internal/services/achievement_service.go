package services

import (
	"context"

	"telar/internal/cache"
	"telar/internal/gamification"
	"telar/internal/models"
	"telar/internal/repositories"
	"telar/internal/validation"

	"go.uber.org/zap"
)

type achievementService struct {
	achievementRepo repositories.AchievementRepository
	maturityRepo    repositories.MaturityScoreRepository
	cache           cache.Cache
	logger          *zap.Logger
}

// NewAchievementService creates a new achievement service
func NewAchievementService(
	achievementRepo repositories.AchievementRepository,
	maturityRepo repositories.MaturityScoreRepository,
	cacheClient cache.Cache,
	logger *zap.Logger,
) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		maturityRepo:    maturityRepo,
		cache:           cacheClient,
		logger:          logger,
	}
}

// ===============================
// EVALUATOR
// ===============================

// CheckAndUnlock runs after every progress mutation. It compares the catalog
// against the snapshot the caller just computed and records each newly
// satisfied achievement. Failures here must never roll back the progress
// update that triggered them, so every error is logged and swallowed.
func (s *achievementService) CheckAndUnlock(ctx context.Context, userID string, snapshot gamification.ProgressSnapshot) []models.UnlockedAchievement {
	unlocked := []models.UnlockedAchievement{}

	catalog, err := s.achievementRepo.ListCatalog(ctx)
	if err != nil {
		s.logger.Error("Failed to load achievement catalog",
			zap.String("user_id", userID),
			zap.Error(err))
		return unlocked
	}
	if len(catalog) == 0 {
		s.logger.Warn("Achievement catalog is empty, nothing to evaluate")
		return unlocked
	}

	already, err := s.achievementRepo.ListUnlockedIDs(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load unlocked achievements",
			zap.String("user_id", userID),
			zap.Error(err))
		return unlocked
	}

	// The onboarding criterion needs an external lookup; resolve it once
	// and only when a locked catalog entry actually asks for it.
	if !snapshot.OnboardingCompleted && s.needsOnboardingLookup(catalog, already) {
		completed, err := s.maturityRepo.Exists(ctx, userID)
		if err != nil {
			s.logger.Warn("Failed to check onboarding completion",
				zap.String("user_id", userID),
				zap.Error(err))
		} else {
			snapshot.OnboardingCompleted = completed
		}
	}

	for _, entry := range catalog {
		if _, ok := already[entry.ID]; ok {
			continue
		}
		if !gamification.CriterionMet(entry.UnlockCriteria, snapshot) {
			continue
		}

		record := &models.UserAchievement{
			UserID:        userID,
			AchievementID: entry.ID,
			Title:         entry.Title,
			Description:   entry.Description,
			Icon:          entry.Icon,
		}
		if err := s.achievementRepo.Create(ctx, record); err != nil {
			if repositories.IsUniqueViolation(err, "") {
				// Concurrent update already unlocked it
				continue
			}
			s.logger.Error("Failed to record unlocked achievement",
				zap.String("user_id", userID),
				zap.String("achievement_id", entry.ID),
				zap.Error(err))
			continue
		}

		s.logger.Info("Achievement unlocked",
			zap.String("user_id", userID),
			zap.String("achievement_id", entry.ID))

		unlocked = append(unlocked, models.UnlockedAchievement{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Icon:        entry.Icon,
		})
	}

	if len(unlocked) > 0 {
		s.invalidateUserCache(ctx, userID)
	}

	return unlocked
}

func (s *achievementService) needsOnboardingLookup(catalog []models.AchievementCatalogEntry, already map[string]struct{}) bool {
	for _, entry := range catalog {
		if entry.UnlockCriteria.Type != models.CriteriaOnboardingComplete {
			continue
		}
		if _, ok := already[entry.ID]; !ok {
			return true
		}
	}
	return false
}

// ===============================
// ADMIN SURFACE
// ===============================

func (s *achievementService) Create(ctx context.Context, req *CreateAchievementRequest) (*models.UserAchievement, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("Invalid achievement data", err)
	}

	achievement := &models.UserAchievement{
		UserID:        req.UserID,
		AchievementID: req.AchievementID,
		Title:         req.Title,
		Description:   req.Description,
		Icon:          req.Icon,
	}

	if err := s.achievementRepo.Create(ctx, achievement); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return nil, EntityAlreadyExistsError("Achievement", "achievement_id", req.AchievementID)
		}
		s.logger.Error("Failed to create achievement", zap.Error(err))
		return nil, NewInternalError("Failed to create achievement")
	}

	s.invalidateUserCache(ctx, req.UserID)
	return achievement, nil
}

func (s *achievementService) GetByID(ctx context.Context, id string) (*models.UserAchievement, error) {
	achievement, err := s.achievementRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get achievement", zap.String("id", id), zap.Error(err))
		return nil, NewInternalError("Failed to get achievement")
	}
	if achievement == nil {
		return nil, EntityNotFoundError("Achievement", id)
	}
	return achievement, nil
}

func (s *achievementService) ListByUser(ctx context.Context, userID string) ([]*models.UserAchievement, error) {
	cacheKey := "achievements:user:" + userID

	var cached []*models.UserAchievement
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	achievements, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list user achievements",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, NewInternalError("Failed to list achievements")
	}
	if achievements == nil {
		achievements = []*models.UserAchievement{}
	}

	_ = s.cache.Set(ctx, cacheKey, achievements, cache.DefaultTTL)
	return achievements, nil
}

func (s *achievementService) List(ctx context.Context) ([]*models.UserAchievement, error) {
	achievements, err := s.achievementRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list achievements", zap.Error(err))
		return nil, NewInternalError("Failed to list achievements")
	}
	if achievements == nil {
		achievements = []*models.UserAchievement{}
	}
	return achievements, nil
}

func (s *achievementService) Delete(ctx context.Context, id string) error {
	achievement, err := s.achievementRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get achievement", zap.String("id", id), zap.Error(err))
		return NewInternalError("Failed to delete achievement")
	}
	if achievement == nil {
		return EntityNotFoundError("Achievement", id)
	}

	if err := s.achievementRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete achievement", zap.String("id", id), zap.Error(err))
		return NewInternalError("Failed to delete achievement")
	}

	s.invalidateUserCache(ctx, achievement.UserID)
	return nil
}

func (s *achievementService) invalidateUserCache(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, "achievements:user:"+userID); err != nil {
		s.logger.Warn("Failed to invalidate achievement cache",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
