package categories

import (
	"encoding/json"
	"net/http"

	"telar/internal/response"
	"telar/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles the product category API endpoints
type Controller struct {
	services *services.ServiceCollection
	builder  *response.Builder
	logger   *zap.Logger
}

// NewController creates a new categories API controller
func NewController(services *services.ServiceCollection, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		services: services,
		builder:  builder,
		logger:   logger,
	}
}

// Create handles POST /categories
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	category, err := c.services.Category.Create(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, category)
}

// List handles GET /categories
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.services.Category.List(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, categories)
}

// ListRoots handles GET /categories/roots
func (c *Controller) ListRoots(w http.ResponseWriter, r *http.Request) {
	categories, err := c.services.Category.ListRoots(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, categories)
}

// ListActive handles GET /categories/active
func (c *Controller) ListActive(w http.ResponseWriter, r *http.Request) {
	categories, err := c.services.Category.ListActive(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, categories)
}

// GetTree handles GET /categories/tree
func (c *Controller) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := c.services.Category.GetTree(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, tree)
}

// GetBySlug handles GET /categories/slug/{slug}
func (c *Controller) GetBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := c.services.Category.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, category)
}

// GetByID handles GET /categories/{id}
func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	category, err := c.services.Category.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, category)
}

// ListChildren handles GET /categories/{id}/children
func (c *Controller) ListChildren(w http.ResponseWriter, r *http.Request) {
	children, err := c.services.Category.ListChildren(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, children)
}

// Update handles PATCH /categories/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	category, err := c.services.Category.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, category)
}

// Delete handles DELETE /categories/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.services.Category.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteNoContent(w, r)
}
