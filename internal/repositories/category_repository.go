package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"telar/internal/database"
	"telar/internal/models"

	"go.uber.org/zap"
)

type categoryRepository struct {
	*BaseRepository
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.Manager, logger *zap.Logger) CategoryRepository {
	return &categoryRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const categoryColumns = `
	id, name, slug, parent_id, display_order, is_active, image_url,
	created_at, updated_at`

func (r *categoryRepository) Create(ctx context.Context, category *models.ProductCategory) error {
	query := `
		INSERT INTO product_categories (name, slug, parent_id, display_order, is_active, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		category.Name, category.Slug, category.ParentID,
		category.DisplayOrder, category.IsActive, category.ImageURL,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.ProductCategory, error) {
	return r.getOne(ctx, "SELECT "+categoryColumns+" FROM product_categories WHERE id = $1", id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.ProductCategory, error) {
	return r.getOne(ctx, "SELECT "+categoryColumns+" FROM product_categories WHERE slug = $1", slug)
}

func (r *categoryRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.ProductCategory, error) {
	category, err := scanCategory(r.QueryRowContext(ctx, query, arg))
	if r.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.ProductCategory) error {
	query := `
		UPDATE product_categories SET
			name = $2, slug = $3, parent_id = $4, display_order = $5,
			is_active = $6, image_url = $7, updated_at = NOW()
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query,
		category.ID, category.Name, category.Slug, category.ParentID,
		category.DisplayOrder, category.IsActive, category.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM product_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsBySlug reports whether another category already uses the slug.
// excludeID exempts the category being updated from matching itself.
func (r *categoryRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_categories WHERE slug = $1 AND ($2 = '' OR id <> $2::uuid))`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.ProductCategory, error) {
	return r.listWhere(ctx, "")
}

func (r *categoryRepository) ListRoots(ctx context.Context) ([]*models.ProductCategory, error) {
	return r.listWhere(ctx, " WHERE parent_id IS NULL")
}

func (r *categoryRepository) ListChildren(ctx context.Context, parentID string) ([]*models.ProductCategory, error) {
	return r.listWhere(ctx, " WHERE parent_id = $1", parentID)
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]*models.ProductCategory, error) {
	return r.listWhere(ctx, " WHERE is_active = TRUE")
}

func (r *categoryRepository) listWhere(ctx context.Context, where string, args ...interface{}) ([]*models.ProductCategory, error) {
	query := "SELECT " + categoryColumns + " FROM product_categories" + where +
		" ORDER BY display_order ASC, name ASC"

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.ProductCategory
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) CountChildren(ctx context.Context, id string) (int64, error) {
	return r.GetTotalCount(ctx, `SELECT COUNT(*) FROM product_categories WHERE parent_id = $1`, id)
}

func scanCategory(row rowScanner) (*models.ProductCategory, error) {
	var c models.ProductCategory
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.DisplayOrder, &c.IsActive,
		&c.ImageURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
