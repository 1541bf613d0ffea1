package members

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/response"
)

// Handler handles org member HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a members handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// SaveRequest is the body for POST /members and PUT /members/:id.
type SaveRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
}

// List handles GET /members. Query ?crew=1 restricts to crew-eligible members.
func (h *Handler) List(c *gin.Context) {
	role := ""
	if c.Query("crew") == "1" {
		role = models.MemberRoleCrew
	}
	list, err := h.repo.List(c.Request.Context(), role)
	if err != nil {
		response.Internal(c, "failed to list members")
		return
	}
	response.OK(c, list)
}

// Create handles POST /members.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.repo.Insert(c.Request.Context(), &models.OrgMember{
		UserID: req.UserID, Role: req.Role, DisplayName: req.DisplayName,
	})
	if err != nil {
		if store.IsConstraint(err) {
			response.Conflict(c, "user reference is invalid")
			return
		}
		response.Internal(c, "failed to create member")
		return
	}
	response.Created(c, m)
}

// Update handles PUT /members/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	var req struct {
		Role        string `json:"role"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.repo.Update(c.Request.Context(), id, &models.OrgMember{
		Role: req.Role, DisplayName: req.DisplayName,
	})
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "member not found")
			return
		}
		response.Internal(c, "failed to update member")
		return
	}
	response.OK(c, m)
}

// Delete handles DELETE /members/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "member not found")
			return
		}
		response.Internal(c, "failed to delete member")
		return
	}
	response.NoContent(c)
}
