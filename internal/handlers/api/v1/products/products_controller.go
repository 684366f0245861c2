package products

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"telar/internal/models"
	"telar/internal/response"
	"telar/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles the products and marketplace API endpoints
type Controller struct {
	services *services.ServiceCollection
	builder  *response.Builder
	logger   *zap.Logger
}

// NewController creates a new products API controller
func NewController(services *services.ServiceCollection, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		services: services,
		builder:  builder,
		logger:   logger,
	}
}

// ===============================
// QUERY PARSING
// ===============================

// parseProductQuery maps the query string onto the shared filter contract.
// Unknown parameters are ignored; malformed numerics and booleans are a 400.
func parseProductQuery(values url.Values) (*models.ProductQuery, error) {
	query := &models.ProductQuery{
		Category:   values.Get("category"),
		Categories: values.Get("categories"),
		Craft:      values.Get("craft"),
		Materials:  values.Get("materials"),
		Techniques: values.Get("techniques"),
		ShopSlug:   values.Get("shopSlug"),
		IDs:        values.Get("ids"),
		Exclude:    values.Get("exclude"),
		Search:     values.Get("q"),
		SortBy:     values.Get("sortBy"),
		Order:      values.Get("order"),
	}

	var err error
	if query.Page, err = parseIntParam(values, "page"); err != nil {
		return nil, err
	}
	if query.Limit, err = parseIntParam(values, "limit"); err != nil {
		return nil, err
	}
	if query.MinPrice, err = parseFloatParam(values, "minPrice"); err != nil {
		return nil, err
	}
	if query.MaxPrice, err = parseFloatParam(values, "maxPrice"); err != nil {
		return nil, err
	}
	if query.Featured, err = parseBoolParam(values, "featured"); err != nil {
		return nil, err
	}
	if query.IsNew, err = parseBoolParam(values, "isNew"); err != nil {
		return nil, err
	}
	if query.CanPurchase, err = parseBoolParam(values, "canPurchase"); err != nil {
		return nil, err
	}

	return query, nil
}

func parseIntParam(values url.Values, name string) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.NewValidationError("Invalid "+name+" parameter", err)
	}
	return parsed, nil
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, services.NewValidationError("Invalid "+name+" parameter", err)
	}
	return &parsed, nil
}

func parseBoolParam(values url.Values, name string) (*bool, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, services.NewValidationError("Invalid "+name+" parameter", err)
	}
	return &parsed, nil
}

// ===============================
// CATALOG ENDPOINTS
// ===============================

// List handles GET /products
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r.URL.Query())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	result, err := c.services.Product.GetAll(r.Context(), query)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// ListFeatured handles GET /products/featured
func (c *Controller) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.builder.WriteError(w, r, services.NewValidationError("Invalid limit parameter", err))
			return
		}
		limit = parsed
	}

	products, err := c.services.Product.GetFeaturedProducts(r.Context(), limit)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, products)
}

// ===============================
// MARKETPLACE ENDPOINTS
// ===============================

// ListMarketplace handles GET /products/marketplace
func (c *Controller) ListMarketplace(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r.URL.Query())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	result, err := c.services.Product.GetMarketplaceProducts(r.Context(), query)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// GetMarketplaceByID handles GET /products/marketplace/{id}
func (c *Controller) GetMarketplaceByID(w http.ResponseWriter, r *http.Request) {
	product, err := c.services.Product.GetMarketplaceProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, product)
}

// ListMarketplaceByShop handles GET /products/marketplace/shop/{shopId}
func (c *Controller) ListMarketplaceByShop(w http.ResponseWriter, r *http.Request) {
	products, err := c.services.Product.GetProductsByShop(r.Context(), chi.URLParam(r, "shopId"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, products)
}

// ListMarketplaceByUser handles GET /products/marketplace/user/{userId}
func (c *Controller) ListMarketplaceByUser(w http.ResponseWriter, r *http.Request) {
	products, err := c.services.Product.GetProductsByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, products)
}

// ===============================
// CRUD ENDPOINTS
// ===============================

// Create handles POST /products
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	product, err := c.services.Product.Create(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, product)
}

// GetByID handles GET /products/{id}
func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := c.services.Product.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, product)
}

// Update handles PATCH /products/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	product, err := c.services.Product.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, product)
}

// Delete handles DELETE /products/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.services.Product.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteNoContent(w, r)
}
