package progress

import (
	"encoding/json"
	"net/http"
	"strconv"

	"telar/internal/contextutils"
	"telar/internal/response"
	"telar/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Controller handles the user progress API endpoints
type Controller struct {
	services *services.ServiceCollection
	builder  *response.Builder
	logger   *zap.Logger
}

// NewController creates a new progress API controller
func NewController(services *services.ServiceCollection, builder *response.Builder, logger *zap.Logger) *Controller {
	return &Controller{
		services: services,
		builder:  builder,
		logger:   logger,
	}
}

// ===============================
// ACTIVITY ENDPOINTS
// ===============================

// UpdateProgress handles POST /user-progress/update. The user id comes from
// the caller's identity token, never from the body.
func (c *Controller) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == "" {
		c.builder.WriteError(w, r, services.NewValidationError("User identity missing from request", nil))
		return
	}

	var req services.UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Progress.UpdateProgress(r.Context(), userID, &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// AddExperience handles POST /user-progress/{userId}/experience
func (c *Controller) AddExperience(w http.ResponseWriter, r *http.Request) {
	var req services.AddExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Progress.AddExperience(r.Context(), chi.URLParam(r, "userId"), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// CompleteMission handles POST /user-progress/{userId}/mission
func (c *Controller) CompleteMission(w http.ResponseWriter, r *http.Request) {
	result, err := c.services.Progress.CompleteMission(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// UpdateStreak handles POST /user-progress/{userId}/streak
func (c *Controller) UpdateStreak(w http.ResponseWriter, r *http.Request) {
	result, err := c.services.Progress.UpdateStreak(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// AddTimeSpent handles POST /user-progress/{userId}/time
func (c *Controller) AddTimeSpent(w http.ResponseWriter, r *http.Request) {
	var req services.AddTimeSpentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Progress.AddTimeSpent(r.Context(), chi.URLParam(r, "userId"), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, result)
}

// ===============================
// READ ENDPOINTS
// ===============================

// GetByUser handles GET /user-progress/user/{userId}. A user without a
// progress row gets a null payload, not a 404.
func (c *Controller) GetByUser(w http.ResponseWriter, r *http.Request) {
	progress, err := c.services.Progress.GetByUserID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, progress)
}

// GetLeaderboard handles GET /user-progress/leaderboard?limit=N
func (c *Controller) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.builder.WriteError(w, r, services.NewValidationError("Invalid limit parameter", err))
			return
		}
		limit = parsed
	}

	entries, err := c.services.Progress.GetLeaderboard(r.Context(), limit)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, entries)
}

// ===============================
// ADMIN ENDPOINTS
// ===============================

// Create handles POST /user-progress
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	progress, err := c.services.Progress.Create(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteCreated(w, r, progress)
}

// List handles GET /user-progress
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	entries, err := c.services.Progress.List(r.Context())
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, entries)
}

// GetByID handles GET /user-progress/{id}
func (c *Controller) GetByID(w http.ResponseWriter, r *http.Request) {
	progress, err := c.services.Progress.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, progress)
}

// Update handles PATCH /user-progress/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProgressFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	progress, err := c.services.Progress.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, progress)
}

// Delete handles DELETE /user-progress/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.services.Progress.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteNoContent(w, r)
}
