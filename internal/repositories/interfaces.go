package repositories

import (
	"context"
	"database/sql"

	"telar/internal/models"
)

// ProgressRepository owns the user_progress table
type ProgressRepository interface {
	Create(ctx context.Context, progress *models.UserProgress) error
	GetByID(ctx context.Context, id string) (*models.UserProgress, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserProgress, error)
	// GetOrCreateForUpdate loads the row with a row-level lock inside tx,
	// inserting the default row first if the user has none yet.
	GetOrCreateForUpdate(ctx context.Context, tx *sql.Tx, userID string) (*models.UserProgress, error)
	SaveTx(ctx context.Context, tx *sql.Tx, progress *models.UserProgress) error
	Save(ctx context.Context, progress *models.UserProgress) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.UserProgress, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.UserProgress, error)
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}

// AchievementRepository owns user_achievements and the read-only catalog
type AchievementRepository interface {
	ListCatalog(ctx context.Context) ([]models.AchievementCatalogEntry, error)
	ListUnlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	Create(ctx context.Context, achievement *models.UserAchievement) error
	GetByID(ctx context.Context, id string) (*models.UserAchievement, error)
	ListByUser(ctx context.Context, userID string) ([]*models.UserAchievement, error)
	List(ctx context.Context) ([]*models.UserAchievement, error)
	Delete(ctx context.Context, id string) error
}

// MaturityScoreRepository is the external lookup behind the
// onboarding_complete criterion
type MaturityScoreRepository interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// ProductRepository owns the products table and its marketplace queries
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	ExistsBySKU(ctx context.Context, sku, excludeID string) (bool, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	// List applies the shared filter contract over active products.
	List(ctx context.Context, query *models.ProductQuery) ([]*models.Product, int64, error)
	// ListMarketplace additionally restricts to approved products of
	// published, marketplace-approved shops and loads the shop relation.
	ListMarketplace(ctx context.Context, query *models.ProductQuery) ([]*models.Product, int64, error)
}

// CategoryRepository owns the product_categories tree
type CategoryRepository interface {
	Create(ctx context.Context, category *models.ProductCategory) error
	GetByID(ctx context.Context, id string) (*models.ProductCategory, error)
	GetBySlug(ctx context.Context, slug string) (*models.ProductCategory, error)
	Update(ctx context.Context, category *models.ProductCategory) error
	Delete(ctx context.Context, id string) error
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context) ([]*models.ProductCategory, error)
	ListRoots(ctx context.Context) ([]*models.ProductCategory, error)
	ListChildren(ctx context.Context, parentID string) ([]*models.ProductCategory, error)
	ListActive(ctx context.Context) ([]*models.ProductCategory, error)
	CountChildren(ctx context.Context, id string) (int64, error)
}
