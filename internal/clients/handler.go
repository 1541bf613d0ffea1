package clients

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/projects"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/response"
)

// Handler handles client HTTP endpoints.
type Handler struct {
	repo     *Repository
	projects *projects.Repository
}

// NewHandler creates a clients handler.
func NewHandler(repo *Repository, projectRepo *projects.Repository) *Handler {
	return &Handler{repo: repo, projects: projectRepo}
}

// SaveRequest is the body for POST /clients and PUT /clients/:id.
type SaveRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// List handles GET /clients?search=...
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Internal(c, "failed to list clients")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /clients/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	cl, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to load client")
		return
	}
	response.OK(c, cl)
}

// Create handles POST /clients.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cl, err := h.repo.Insert(c.Request.Context(), &models.Client{
		Name: req.Name, Phone: req.Phone, Email: req.Email, Address: req.Address, Notes: req.Notes,
	})
	if err != nil {
		response.Internal(c, "failed to create client")
		return
	}
	response.Created(c, cl)
}

// Update handles PUT /clients/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cl, err := h.repo.Update(c.Request.Context(), id, &models.Client{
		Name: req.Name, Phone: req.Phone, Email: req.Email, Address: req.Address, Notes: req.Notes,
	})
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to update client")
		return
	}
	response.OK(c, cl)
}

// Delete handles DELETE /clients/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to delete client")
		return
	}
	response.NoContent(c)
}

// ListProjects handles GET /clients/:id/projects.
func (h *Handler) ListProjects(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid client id")
		return
	}
	list, err := h.projects.ListByClient(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list projects")
		return
	}
	response.OK(c, list)
}
