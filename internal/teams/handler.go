package teams

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/response"
)

// Handler handles team HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a teams handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// SaveRequest is the body for POST /teams and PUT /teams/:id.
type SaveRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// RosterRequest is the body for roster add/replace endpoints.
type RosterRequest struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

// List handles GET /teams.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list teams")
		return
	}
	response.OK(c, list)
}

// Create handles POST /teams.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.repo.Insert(c.Request.Context(), &models.Team{
		Name: req.Name, Description: req.Description, Color: req.Color,
	})
	if err != nil {
		response.Internal(c, "failed to create team")
		return
	}
	response.Created(c, t)
}

// Update handles PUT /teams/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.repo.Update(c.Request.Context(), id, &models.Team{
		Name: req.Name, Description: req.Description, Color: req.Color,
	})
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "team not found")
			return
		}
		response.Internal(c, "failed to update team")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /teams/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "team not found")
			return
		}
		response.Internal(c, "failed to delete team")
		return
	}
	response.NoContent(c)
}

// ListMembers handles GET /teams/:id/members.
func (h *Handler) ListMembers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	list, err := h.repo.ListMembers(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list roster")
		return
	}
	response.OK(c, list)
}

// AddMembers handles POST /teams/:id/members.
func (h *Handler) AddMembers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	var req RosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	list, err := h.repo.AddMembers(c.Request.Context(), id, req.UserIDs)
	if err != nil {
		if store.IsConstraint(err) {
			response.Conflict(c, "user reference is invalid")
			return
		}
		response.Internal(c, "failed to add members")
		return
	}
	response.Created(c, list)
}

// ReplaceMembers handles PUT /teams/:id/members.
func (h *Handler) ReplaceMembers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid team id")
		return
	}
	var req RosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	list, err := h.repo.ReplaceMembers(c.Request.Context(), id, req.UserIDs)
	if err != nil {
		response.Internal(c, "failed to replace roster")
		return
	}
	response.OK(c, list)
}

// RemoveMember handles DELETE /team-members/:memberId.
func (h *Handler) RemoveMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		response.BadRequest(c, "invalid roster entry id")
		return
	}
	if err := h.repo.RemoveMember(c.Request.Context(), id); err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "roster entry not found")
			return
		}
		response.Internal(c, "failed to remove member")
		return
	}
	response.NoContent(c)
}
