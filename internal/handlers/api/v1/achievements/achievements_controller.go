package achievements

import (
	"encoding/json"
	"net/http"

	"telar/internal/response"
	"telar/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles the user achievements API endpoints
type Controller struct {
	services *services.ServiceCollection
	builder  *response.Builder
	logger   *zap.Logger
}

// NewController creates a new achievements API controller
func NewController(services *services.ServiceCollection, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		services: services,
		builder:  builder,
		logger:   logger,
	}
}

// Create handles POST /achievements
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAchievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	achievement, err := c.services.Achievement.Create(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, achievement)
}

// List handles GET /achievements
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	achievements, err := c.services.Achievement.List(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, achievements)
}

// ListByUser handles GET /achievements/user/{userId}
func (c *Controller) ListByUser(w http.ResponseWriter, r *http.Request) {
	achievements, err := c.services.Achievement.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, achievements)
}

// GetByID handles GET /achievements/{id}
func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	achievement, err := c.services.Achievement.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, achievement)
}

// Delete handles DELETE /achievements/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.services.Achievement.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteNoContent(w, r)
}
