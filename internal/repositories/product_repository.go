package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"telar/internal/database"
	"telar/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type productRepository struct {
	*BaseRepository
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.Manager, logger *zap.Logger) ProductRepository {
	return &productRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const productColumns = `
	p.id, p.shop_id, p.name, p.description, p.short_description, p.price,
	p.compare_price, p.images, p.tags, p.materials, p.techniques, p.inventory,
	p.sku, p.active, p.featured, p.moderation_status, p.category_id,
	p.subcategory, p.shipping_data_complete, p.allows_local_pickup,
	p.created_at, p.updated_at`

const shopColumns = `
	s.id, s.user_id, s.shop_name, s.shop_slug, s.description, s.logo_url,
	s.banner_url, s.region, s.craft_type, s.publish_status,
	s.marketplace_approved, s.bank_data_status, s.contact_city,
	s.contact_department`

// productFilter accumulates WHERE conditions with numbered placeholders
type productFilter struct {
	conditions []string
	args       []interface{}
}

// next returns the placeholder for one new argument
func (f *productFilter) next(arg interface{}) string {
	f.args = append(f.args, arg)
	return fmt.Sprintf("$%d", len(f.args))
}

func (f *productFilter) add(format string, args ...interface{}) {
	placeholders := make([]interface{}, len(args))
	for i, arg := range args {
		placeholders[i] = f.next(arg)
	}
	f.conditions = append(f.conditions, fmt.Sprintf(format, placeholders...))
}

func (f *productFilter) where() string {
	if len(f.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conditions, " AND ")
}

// buildFilter translates the shared query contract into SQL conditions.
// Filters supplied together are ANDed; within a list filter any term may
// match (membership semantics).
func buildFilter(q *models.ProductQuery) *productFilter {
	f := &productFilter{}

	if q.Category != "" {
		f.add("LOWER(c.name) = LOWER(%s)", q.Category)
	}
	if list := models.SplitList(q.Categories); len(list) > 0 {
		f.add("LOWER(c.name) = ANY(%s)", pq.Array(models.LowerList(list)))
	}
	if list := models.SplitList(q.Craft); len(list) > 0 {
		f.add("LOWER(s.craft_type) = ANY(%s)", pq.Array(models.LowerList(list)))
	}
	if list := models.SplitList(q.Materials); len(list) > 0 {
		f.add("EXISTS (SELECT 1 FROM unnest(p.materials) AS m WHERE LOWER(m) = ANY(%s))",
			pq.Array(models.LowerList(list)))
	}
	if list := models.SplitList(q.Techniques); len(list) > 0 {
		f.add("EXISTS (SELECT 1 FROM unnest(p.techniques) AS t WHERE LOWER(t) = ANY(%s))",
			pq.Array(models.LowerList(list)))
	}
	if q.ShopSlug != "" {
		f.add("s.shop_slug = %s", q.ShopSlug)
	}
	if list := models.SplitList(q.IDs); len(list) > 0 {
		f.add("p.id = ANY(%s)", pq.Array(list))
	}
	if q.Exclude != "" {
		f.add("p.id <> %s", q.Exclude)
	}
	if q.MinPrice != nil {
		f.add("p.price >= %s", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		f.add("p.price <= %s", *q.MaxPrice)
	}
	if q.Featured != nil {
		f.add("p.featured = %s", *q.Featured)
	}
	if q.IsNew != nil {
		if *q.IsNew {
			f.conditions = append(f.conditions, "p.created_at >= NOW() - INTERVAL '30 days'")
		} else {
			f.conditions = append(f.conditions, "p.created_at < NOW() - INTERVAL '30 days'")
		}
	}
	if q.CanPurchase != nil {
		if *q.CanPurchase {
			f.conditions = append(f.conditions, "p.inventory > 0")
		} else {
			f.conditions = append(f.conditions, "p.inventory = 0")
		}
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		f.conditions = append(f.conditions, fmt.Sprintf(
			"(p.name ILIKE %s OR COALESCE(p.description, '') ILIKE %s OR COALESCE(p.short_description, '') ILIKE %s"+
				" OR EXISTS (SELECT 1 FROM unnest(p.tags) AS t WHERE LOWER(t) = LOWER(%s)))",
			f.next(pattern), f.next(pattern), f.next(pattern), f.next(q.Search)))
	}
	if q.ShopID != "" {
		f.add("p.shop_id = %s", q.ShopID)
	}
	if q.UserID != "" {
		f.add("s.user_id = %s", q.UserID)
	}

	return f
}

// sortColumn whitelists the sortable columns. "rating" has no backing
// aggregate yet and falls back to created_at until one exists.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "price":
		return "p.price"
	case "name":
		return "p.name"
	case "createdAt", "created_at", "rating", "":
		return "p.created_at"
	default:
		return "p.created_at"
	}
}

func orderClause(q *models.ProductQuery) string {
	return fmt.Sprintf(" ORDER BY %s %s", sortColumn(q.SortBy), q.Order)
}

func (r *productRepository) List(ctx context.Context, q *models.ProductQuery) ([]*models.Product, int64, error) {
	filter := buildFilter(q)
	filter.conditions = append(filter.conditions, "p.active = TRUE")

	return r.listWithFilter(ctx, q, filter, false)
}

func (r *productRepository) ListMarketplace(ctx context.Context, q *models.ProductQuery) ([]*models.Product, int64, error) {
	filter := buildFilter(q)
	filter.conditions = append(filter.conditions,
		"p.active = TRUE",
		fmt.Sprintf("p.moderation_status = ANY(%s)",
			filter.next(pq.Array([]string{models.ModerationApproved, models.ModerationApprovedWithEdits}))),
		fmt.Sprintf("s.publish_status = %s", filter.next(models.ShopPublished)),
		"s.marketplace_approved = TRUE",
	)

	return r.listWithFilter(ctx, q, filter, true)
}

const productJoins = `
	FROM products p
	LEFT JOIN artisan_shops s ON s.id = p.shop_id
	LEFT JOIN product_categories c ON c.id = p.category_id`

func (r *productRepository) listWithFilter(ctx context.Context, q *models.ProductQuery, filter *productFilter, withShop bool) ([]*models.Product, int64, error) {
	where := filter.where()

	total, err := r.GetTotalCount(ctx, "SELECT COUNT(*)"+productJoins+where, filter.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	columns := productColumns
	if withShop {
		columns += "," + shopColumns
	}

	query := "SELECT " + columns + productJoins + where + orderClause(q)

	args := filter.args
	if !q.Unpaginated {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset())
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows, withShop)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func scanProduct(rows *sql.Rows, withShop bool) (*models.Product, error) {
	var p models.Product
	dest := []interface{}{
		&p.ID, &p.ShopID, &p.Name, &p.Description, &p.ShortDescription, &p.Price,
		&p.ComparePrice, pq.Array(&p.Images), pq.Array(&p.Tags), pq.Array(&p.Materials),
		pq.Array(&p.Techniques), &p.Inventory, &p.SKU, &p.Active, &p.Featured,
		&p.ModerationStatus, &p.CategoryID, &p.Subcategory, &p.ShippingDataComplete,
		&p.AllowsLocalPickup, &p.CreatedAt, &p.UpdatedAt,
	}

	var shop models.ArtisanShop
	var shopID sql.NullString
	if withShop {
		dest = append(dest,
			&shopID, &shop.UserID, &shop.ShopName, &shop.ShopSlug, &shop.Description,
			&shop.LogoURL, &shop.BannerURL, &shop.Region, &shop.CraftType,
			&shop.PublishStatus, &shop.MarketplaceApproved, &shop.BankDataStatus,
			&shop.ContactCity, &shop.ContactDepartment,
		)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan product row: %w", err)
	}

	if withShop && shopID.Valid {
		shop.ID = shopID.String
		p.Shop = &shop
	}

	return &p, nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := "SELECT " + productColumns + "," + shopColumns + productJoins + " WHERE p.id = $1"

	rows, err := r.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanProduct(rows, true)
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (
			shop_id, name, description, short_description, price, compare_price,
			images, tags, materials, techniques, inventory, sku, active, featured,
			moderation_status, category_id, subcategory, shipping_data_complete,
			allows_local_pickup
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		product.ShopID, product.Name, product.Description, product.ShortDescription,
		product.Price, product.ComparePrice, pq.Array(product.Images),
		pq.Array(product.Tags), pq.Array(product.Materials), pq.Array(product.Techniques),
		product.Inventory, product.SKU, product.Active, product.Featured,
		product.ModerationStatus, product.CategoryID, product.Subcategory,
		product.ShippingDataComplete, product.AllowsLocalPickup,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products SET
			name = $2, description = $3, short_description = $4, price = $5,
			compare_price = $6, images = $7, tags = $8, materials = $9,
			techniques = $10, inventory = $11, sku = $12, active = $13,
			featured = $14, moderation_status = $15, category_id = $16,
			subcategory = $17, shipping_data_complete = $18,
			allows_local_pickup = $19, updated_at = NOW()
		WHERE id = $1`

	result, err := r.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.ShortDescription,
		product.Price, product.ComparePrice, pq.Array(product.Images),
		pq.Array(product.Tags), pq.Array(product.Materials), pq.Array(product.Techniques),
		product.Inventory, product.SKU, product.Active, product.Featured,
		product.ModerationStatus, product.CategoryID, product.Subcategory,
		product.ShippingDataComplete, product.AllowsLocalPickup,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsBySKU reports whether another product already carries the SKU.
// excludeID exempts the product being updated from matching itself.
func (r *productRepository) ExistsBySKU(ctx context.Context, sku, excludeID string) (bool, error) {
	var exists bool
	err := r.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1 AND ($2 = '' OR id <> $2::uuid))`,
		sku, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sku: %w", err)
	}
	return exists, nil
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	return r.GetTotalCount(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID)
}
