package services

import (
	"context"

	"telar/internal/gamification"
	"telar/internal/models"
)

// ProgressService owns the gamified user progress lifecycle
type ProgressService interface {
	// UpdateProgress applies one activity outcome atomically: XP and
	// level-ups, mission count, streak, then achievement evaluation.
	UpdateProgress(ctx context.Context, userID string, req *UpdateProgressRequest) (*models.ProgressUpdateResult, error)
	AddExperience(ctx context.Context, userID string, req *AddExperienceRequest) (*models.ProgressUpdateResult, error)
	CompleteMission(ctx context.Context, userID string) (*models.ProgressUpdateResult, error)
	UpdateStreak(ctx context.Context, userID string) (*models.ProgressUpdateResult, error)
	AddTimeSpent(ctx context.Context, userID string, req *AddTimeSpentRequest) (*models.ProgressUpdateResult, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserProgress, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*models.UserProgress, error)

	// Admin surface
	Create(ctx context.Context, req *CreateProgressRequest) (*models.UserProgress, error)
	GetByID(ctx context.Context, id string) (*models.UserProgress, error)
	List(ctx context.Context) ([]*models.UserProgress, error)
	Update(ctx context.Context, id string, req *UpdateProgressFieldsRequest) (*models.UserProgress, error)
	Delete(ctx context.Context, id string) error
}

// AchievementService evaluates and records unlocked achievements
type AchievementService interface {
	// CheckAndUnlock evaluates the catalog against the snapshot and
	// records every newly satisfied achievement. It never fails the
	// surrounding operation; evaluation errors are logged and swallowed.
	CheckAndUnlock(ctx context.Context, userID string, snapshot gamification.ProgressSnapshot) []models.UnlockedAchievement

	Create(ctx context.Context, req *CreateAchievementRequest) (*models.UserAchievement, error)
	GetByID(ctx context.Context, id string) (*models.UserAchievement, error)
	ListByUser(ctx context.Context, userID string) ([]*models.UserAchievement, error)
	List(ctx context.Context) ([]*models.UserAchievement, error)
	Delete(ctx context.Context, id string) error
}

// ProductService owns product CRUD and the marketplace read surface
type ProductService interface {
	Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context, query *models.ProductQuery) (*models.ListResponse[*models.Product], error)

	// Marketplace surface (enriched view-models)
	GetMarketplaceProducts(ctx context.Context, query *models.ProductQuery) (*models.ListResponse[*models.MarketplaceProduct], error)
	GetMarketplaceProductByID(ctx context.Context, id string) (*models.MarketplaceProduct, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]*models.MarketplaceProduct, error)
	GetProductsByShop(ctx context.Context, shopID string) ([]*models.MarketplaceProduct, error)
	GetProductsByUser(ctx context.Context, userID string) ([]*models.MarketplaceProduct, error)
}

// CategoryService owns the category tree
type CategoryService interface {
	Create(ctx context.Context, req *CreateCategoryRequest) (*models.ProductCategory, error)
	GetByID(ctx context.Context, id string) (*models.ProductCategory, error)
	GetBySlug(ctx context.Context, slug string) (*models.ProductCategory, error)
	Update(ctx context.Context, id string, req *UpdateCategoryRequest) (*models.ProductCategory, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.ProductCategory, error)
	ListRoots(ctx context.Context) ([]*models.ProductCategory, error)
	ListChildren(ctx context.Context, parentID string) ([]*models.ProductCategory, error)
	ListActive(ctx context.Context) ([]*models.ProductCategory, error)
	GetTree(ctx context.Context) ([]*models.ProductCategory, error)
}

// ServiceCollection bundles every service for handler wiring
type ServiceCollection struct {
	Progress    ProgressService
	Achievement AchievementService
	Product     ProductService
	Category    CategoryService
}
