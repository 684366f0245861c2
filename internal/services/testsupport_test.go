package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"telar/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ===============================
// SHARED TEST FAKES
// ===============================

// fakeCache satisfies cache.Cache without storing anything, so service tests
// always hit the fake repositories.
type fakeCache struct{}

func (fakeCache) Get(context.Context, string, interface{}) bool { return false }
func (fakeCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (fakeCache) Delete(context.Context, string) error        { return nil }
func (fakeCache) DeletePattern(context.Context, string) error { return nil }
func (fakeCache) Health(context.Context) error                { return nil }
func (fakeCache) Close() error                                { return nil }

// fakeProgressRepo keeps progress rows in memory keyed by user id.
type fakeProgressRepo struct {
	byUser map[string]*models.UserProgress
	nextID int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{byUser: make(map[string]*models.UserProgress)}
}

func (r *fakeProgressRepo) Create(_ context.Context, progress *models.UserProgress) error {
	if _, ok := r.byUser[progress.UserID]; ok {
		return &pq.Error{Code: "23505", Constraint: "user_progress_user_id_key"}
	}
	r.nextID++
	progress.ID = fmt.Sprintf("progress-%d", r.nextID)
	clone := *progress
	r.byUser[progress.UserID] = &clone
	return nil
}

func (r *fakeProgressRepo) GetByID(_ context.Context, id string) (*models.UserProgress, error) {
	for _, progress := range r.byUser {
		if progress.ID == id {
			clone := *progress
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeProgressRepo) GetByUserID(_ context.Context, userID string) (*models.UserProgress, error) {
	progress, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	clone := *progress
	return &clone, nil
}

func (r *fakeProgressRepo) GetOrCreateForUpdate(ctx context.Context, _ *sql.Tx, userID string) (*models.UserProgress, error) {
	if progress, ok := r.byUser[userID]; ok {
		clone := *progress
		return &clone, nil
	}
	progress := models.NewUserProgress(userID)
	if err := r.Create(ctx, progress); err != nil {
		return nil, err
	}
	clone := *progress
	return &clone, nil
}

func (r *fakeProgressRepo) SaveTx(_ context.Context, _ *sql.Tx, progress *models.UserProgress) error {
	if _, ok := r.byUser[progress.UserID]; !ok {
		return sql.ErrNoRows
	}
	clone := *progress
	r.byUser[progress.UserID] = &clone
	return nil
}

func (r *fakeProgressRepo) Save(ctx context.Context, progress *models.UserProgress) error {
	return r.SaveTx(ctx, nil, progress)
}

func (r *fakeProgressRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	for _, progress := range r.byUser {
		if progress.ID != id {
			continue
		}
		for column, value := range fields {
			switch column {
			case "level":
				progress.Level = value.(int)
			case "next_level_xp":
				progress.NextLevelXP = value.(int)
			case "experience_points":
				progress.ExperiencePoints = value.(int)
			case "completed_missions":
				progress.CompletedMissions = value.(int)
			case "current_streak":
				progress.CurrentStreak = value.(int)
			case "longest_streak":
				progress.LongestStreak = value.(int)
			case "total_time_spent":
				progress.TotalTimeSpent = value.(int)
			}
		}
		return nil
	}
	return sql.ErrNoRows
}

func (r *fakeProgressRepo) Delete(_ context.Context, id string) error {
	for userID, progress := range r.byUser {
		if progress.ID == id {
			delete(r.byUser, userID)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeProgressRepo) List(_ context.Context) ([]*models.UserProgress, error) {
	var entries []*models.UserProgress
	for _, progress := range r.byUser {
		clone := *progress
		entries = append(entries, &clone)
	}
	return entries, nil
}

func (r *fakeProgressRepo) Leaderboard(_ context.Context, limit int) ([]*models.UserProgress, error) {
	entries, _ := r.List(nil)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *fakeProgressRepo) WithTransaction(_ context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

// fakeAchievementRepo keeps the catalog and unlocked rows in memory.
type fakeAchievementRepo struct {
	catalog  []models.AchievementCatalogEntry
	unlocked []*models.UserAchievement
	nextID   int

	// createErr, when set, is returned by every Create call. Lets tests
	// simulate a row inserted by a concurrent transaction.
	createErr error
}

func (r *fakeAchievementRepo) ListCatalog(context.Context) ([]models.AchievementCatalogEntry, error) {
	return r.catalog, nil
}

func (r *fakeAchievementRepo) ListUnlockedIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	for _, achievement := range r.unlocked {
		if achievement.UserID == userID {
			ids[achievement.AchievementID] = struct{}{}
		}
	}
	return ids, nil
}

func (r *fakeAchievementRepo) Create(_ context.Context, achievement *models.UserAchievement) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.unlocked {
		if existing.UserID == achievement.UserID && existing.AchievementID == achievement.AchievementID {
			return &pq.Error{Code: "23505", Constraint: "user_achievements_user_id_achievement_id_key"}
		}
	}
	r.nextID++
	achievement.ID = fmt.Sprintf("ua-%d", r.nextID)
	achievement.UnlockedAt = time.Now()
	clone := *achievement
	r.unlocked = append(r.unlocked, &clone)
	return nil
}

func (r *fakeAchievementRepo) GetByID(_ context.Context, id string) (*models.UserAchievement, error) {
	for _, achievement := range r.unlocked {
		if achievement.ID == id {
			clone := *achievement
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAchievementRepo) ListByUser(_ context.Context, userID string) ([]*models.UserAchievement, error) {
	var achievements []*models.UserAchievement
	for _, achievement := range r.unlocked {
		if achievement.UserID == userID {
			clone := *achievement
			achievements = append(achievements, &clone)
		}
	}
	return achievements, nil
}

func (r *fakeAchievementRepo) List(context.Context) ([]*models.UserAchievement, error) {
	var achievements []*models.UserAchievement
	for _, achievement := range r.unlocked {
		clone := *achievement
		achievements = append(achievements, &clone)
	}
	return achievements, nil
}

func (r *fakeAchievementRepo) Delete(_ context.Context, id string) error {
	for i, achievement := range r.unlocked {
		if achievement.ID == id {
			r.unlocked = append(r.unlocked[:i], r.unlocked[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// fakeMaturityRepo reports a fixed onboarding state.
type fakeMaturityRepo struct {
	exists bool
}

func (r *fakeMaturityRepo) Exists(context.Context, string) (bool, error) {
	return r.exists, nil
}

// defaultCatalog mirrors the seeded achievements used across tests.
func defaultCatalog() []models.AchievementCatalogEntry {
	return []models.AchievementCatalogEntry{
		{
			ID:    "first_mission",
			Title: "Primera Misión",
			Icon:  "🚀",
			UnlockCriteria: models.AchievementCriteria{
				Type: models.CriteriaMissionsCompleted, Count: 1,
			},
		},
		{
			ID:    "level_5",
			Title: "Artesano en Ascenso",
			Icon:  "⭐",
			UnlockCriteria: models.AchievementCriteria{
				Type: models.CriteriaLevelReached, Level: 5,
			},
		},
		{
			ID:    "week_streak",
			Title: "Constancia",
			Icon:  "🔥",
			UnlockCriteria: models.AchievementCriteria{
				Type: models.CriteriaStreakReached, Days: 7,
			},
		},
		{
			ID:    "onboarding_complete",
			Title: "Bienvenida Completa",
			Icon:  "🎉",
			UnlockCriteria: models.AchievementCriteria{
				Type: models.CriteriaOnboardingComplete,
			},
		},
	}
}

func unlockedIDs(unlocked []models.UnlockedAchievement) []string {
	ids := make([]string, 0, len(unlocked))
	for _, achievement := range unlocked {
		ids = append(ids, achievement.ID)
	}
	return ids
}

// fakeProductRepo stores products in memory and applies only the filters the
// tests exercise; full filter SQL belongs to the repository layer.
type fakeProductRepo struct {
	products []*models.Product
	nextID   int
}

func (r *fakeProductRepo) Create(_ context.Context, product *models.Product) error {
	if product.SKU != nil {
		for _, existing := range r.products {
			if existing.SKU != nil && *existing.SKU == *product.SKU {
				return &pq.Error{Code: "23505", Constraint: "products_sku_key"}
			}
		}
	}
	r.nextID++
	product.ID = fmt.Sprintf("product-%d", r.nextID)
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	clone := *product
	r.products = append(r.products, &clone)
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*models.Product, error) {
	for _, product := range r.products {
		if product.ID == id {
			clone := *product
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *models.Product) error {
	for i, existing := range r.products {
		if existing.ID == product.ID {
			clone := *product
			r.products[i] = &clone
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	for i, product := range r.products {
		if product.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeProductRepo) ExistsBySKU(_ context.Context, sku, excludeID string) (bool, error) {
	for _, product := range r.products {
		if product.SKU != nil && *product.SKU == sku && product.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) CountByCategory(_ context.Context, categoryID string) (int64, error) {
	var count int64
	for _, product := range r.products {
		if product.CategoryID != nil && *product.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (r *fakeProductRepo) List(_ context.Context, query *models.ProductQuery) ([]*models.Product, int64, error) {
	var matched []*models.Product
	for _, product := range r.products {
		if product.Active {
			clone := *product
			matched = append(matched, &clone)
		}
	}
	return paginate(matched, query)
}

func (r *fakeProductRepo) ListMarketplace(_ context.Context, query *models.ProductQuery) ([]*models.Product, int64, error) {
	var matched []*models.Product
	for _, product := range r.products {
		if !product.Active || !marketplaceVisible(product) {
			continue
		}
		if query.Featured != nil && product.Featured != *query.Featured {
			continue
		}
		if query.IDs != "" && product.ID != query.IDs {
			continue
		}
		if query.ShopID != "" && product.ShopID != query.ShopID {
			continue
		}
		if query.UserID != "" && (product.Shop == nil || product.Shop.UserID != query.UserID) {
			continue
		}
		clone := *product
		matched = append(matched, &clone)
	}
	return paginate(matched, query)
}

func marketplaceVisible(product *models.Product) bool {
	if product.ModerationStatus != models.ModerationApproved &&
		product.ModerationStatus != models.ModerationApprovedWithEdits {
		return false
	}
	shop := product.Shop
	return shop != nil && shop.PublishStatus == models.ShopPublished && shop.MarketplaceApproved
}

func paginate(matched []*models.Product, query *models.ProductQuery) ([]*models.Product, int64, error) {
	total := int64(len(matched))
	if query.Unpaginated {
		return matched, total, nil
	}
	offset := query.Offset()
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// fakeCategoryRepo stores categories in memory keyed by id. IDs must be
// UUID-shaped because they feed back into uuid4-validated parent references.
type fakeCategoryRepo struct {
	categories []*models.ProductCategory
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *models.ProductCategory) error {
	for _, existing := range r.categories {
		if existing.Slug == category.Slug {
			return &pq.Error{Code: "23505", Constraint: "product_categories_slug_key"}
		}
	}
	category.ID = uuid.NewString()
	clone := *category
	r.categories = append(r.categories, &clone)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*models.ProductCategory, error) {
	for _, category := range r.categories {
		if category.ID == id {
			clone := *category
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetBySlug(_ context.Context, slug string) (*models.ProductCategory, error) {
	for _, category := range r.categories {
		if category.Slug == slug {
			clone := *category
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *models.ProductCategory) error {
	for i, existing := range r.categories {
		if existing.ID == category.ID {
			clone := *category
			r.categories[i] = &clone
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	for i, category := range r.categories {
		if category.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeCategoryRepo) ExistsBySlug(_ context.Context, slug, excludeID string) (bool, error) {
	for _, category := range r.categories {
		if category.Slug == slug && category.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*models.ProductCategory, error) {
	var categories []*models.ProductCategory
	for _, category := range r.categories {
		clone := *category
		categories = append(categories, &clone)
	}
	return categories, nil
}

func (r *fakeCategoryRepo) ListRoots(_ context.Context) ([]*models.ProductCategory, error) {
	var roots []*models.ProductCategory
	for _, category := range r.categories {
		if category.ParentID == nil {
			clone := *category
			roots = append(roots, &clone)
		}
	}
	return roots, nil
}

func (r *fakeCategoryRepo) ListChildren(_ context.Context, parentID string) ([]*models.ProductCategory, error) {
	var children []*models.ProductCategory
	for _, category := range r.categories {
		if category.ParentID != nil && *category.ParentID == parentID {
			clone := *category
			children = append(children, &clone)
		}
	}
	return children, nil
}

func (r *fakeCategoryRepo) ListActive(_ context.Context) ([]*models.ProductCategory, error) {
	var active []*models.ProductCategory
	for _, category := range r.categories {
		if category.IsActive {
			clone := *category
			active = append(active, &clone)
		}
	}
	return active, nil
}

func (r *fakeCategoryRepo) CountChildren(_ context.Context, id string) (int64, error) {
	children, _ := r.ListChildren(nil, id)
	return int64(len(children)), nil
}
