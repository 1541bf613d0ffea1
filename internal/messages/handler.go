package messages

import (
	"github.com/gin-gonic/gin"

	"github.com/crewsched/backend/pkg/response"
)

// Handler handles the message log viewer endpoint.
type Handler struct {
	repo *Repository
}

// NewHandler creates a messages handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /messages.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list messages")
		return
	}
	response.OK(c, list)
}
