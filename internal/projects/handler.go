package projects

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/response"
)

// EventLister lists events scheduled against a project (implemented by the
// schedule repository).
type EventLister interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Event, error)
}

// Handler handles project HTTP endpoints.
type Handler struct {
	repo   *Repository
	events EventLister
}

// NewHandler creates a projects handler.
func NewHandler(repo *Repository, events EventLister) *Handler {
	return &Handler{repo: repo, events: events}
}

// SaveRequest is the body for POST /projects and PUT /projects/:id.
type SaveRequest struct {
	ClientID    *uuid.UUID `json:"client_id"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
}

// List handles GET /projects?status=...
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Internal(c, "failed to list projects")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /projects/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to load project")
		return
	}
	response.OK(c, p)
}

// Create handles POST /projects.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.repo.Insert(c.Request.Context(), &models.Project{
		ClientID: req.ClientID, Title: req.Title, Description: req.Description,
		Address: req.Address, Status: req.Status, Priority: req.Priority,
	})
	if err != nil {
		if store.IsConstraint(err) {
			response.Conflict(c, "client reference is invalid")
			return
		}
		response.Internal(c, "failed to create project")
		return
	}
	response.Created(c, p)
}

// Update handles PUT /projects/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.repo.Update(c.Request.Context(), id, &models.Project{
		ClientID: req.ClientID, Title: req.Title, Description: req.Description,
		Address: req.Address, Status: req.Status, Priority: req.Priority,
	})
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to update project")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /projects/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to delete project")
		return
	}
	response.NoContent(c)
}

// ListEvents handles GET /projects/:id/events.
func (h *Handler) ListEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	list, err := h.events.ListByProject(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}
