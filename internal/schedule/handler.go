package schedule

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crewsched/backend/internal/middleware"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/response"
)

// Handler exposes the scheduling core over HTTP: the calendar window, crew
// resolution, and the event lifecycle operations.
type Handler struct {
	window      *Window
	resolver    *Resolver
	controller  *Controller
	assignments AssignmentStore
}

// NewHandler creates a schedule handler.
func NewHandler(window *Window, resolver *Resolver, controller *Controller, assignments AssignmentStore) *Handler {
	return &Handler{window: window, resolver: resolver, controller: controller, assignments: assignments}
}

// RangeRequest is the body for PUT /schedule/window/range.
type RangeRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// TeamFilterRequest is the body for PUT /schedule/window/team.
// A null team_id clears the filter (all teams).
type TeamFilterRequest struct {
	TeamID *uuid.UUID `json:"team_id"`
}

// windowState is the response shape for window endpoints.
type windowState struct {
	Start      *time.Time  `json:"start,omitempty"`
	End        *time.Time  `json:"end,omitempty"`
	TeamID     *uuid.UUID  `json:"team_id,omitempty"`
	Loading    bool        `json:"loading"`
	Events     interface{} `json:"events"`
	Superseded bool        `json:"superseded,omitempty"`
}

func (h *Handler) state(superseded bool) windowState {
	st := windowState{
		TeamID:     h.window.TeamFilter(),
		Loading:    h.window.Loading(),
		Events:     h.window.Events(),
		Superseded: superseded,
	}
	if start, end, ok := h.window.Range(); ok {
		st.Start, st.End = &start, &end
	}
	return st
}

// GetWindow handles GET /schedule/window.
func (h *Handler) GetWindow(c *gin.Context) {
	response.OK(c, h.state(false))
}

// SetRange handles PUT /schedule/window/range.
func (h *Handler) SetRange(c *gin.Context) {
	var req RangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		response.BadRequest(c, "invalid start")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		response.BadRequest(c, "invalid end")
		return
	}
	if !start.Before(end) {
		response.BadRequest(c, "start must be before end")
		return
	}
	_, applied, err := h.window.SetRange(c.Request.Context(), start, end)
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, h.state(!applied))
}

// SetTeamFilter handles PUT /schedule/window/team.
func (h *Handler) SetTeamFilter(c *gin.Context) {
	var req TeamFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	_, applied, err := h.window.SetTeamFilter(c.Request.Context(), req.TeamID)
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, h.state(!applied))
}

// EligibleCrew handles GET /schedule/crew?team_id=...
func (h *Handler) EligibleCrew(c *gin.Context) {
	var teamID *uuid.UUID
	if s := c.Query("team_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid team_id")
			return
		}
		teamID = &id
	}
	crew, err := h.resolver.EligibleCrew(c.Request.Context(), teamID)
	if err != nil {
		response.Internal(c, "failed to resolve crew")
		return
	}
	response.OK(c, crew)
}

// ListAssignments handles GET /events/:id/assignments.
func (h *Handler) ListAssignments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.assignments.ListByEvent(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list assignments")
		return
	}
	response.OK(c, list)
}

// SaveResult pairs a saved event with its reconciled assignments.
type SaveResult struct {
	Event       interface{} `json:"event"`
	Assignments interface{} `json:"assignments"`
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var form EventForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	form.ID = nil
	if uid, ok := c.Get(middleware.ContextUserID); ok {
		if id, ok := uid.(uuid.UUID); ok {
			form.CreatedBy = &id
		}
	}
	ev, assignments, err := h.controller.Save(c.Request.Context(), form)
	if err != nil {
		h.saveError(c, err)
		return
	}
	response.Created(c, SaveResult{Event: ev, Assignments: assignments})
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var form EventForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	form.ID = &id
	ev, assignments, err := h.controller.Save(c.Request.Context(), form)
	if err != nil {
		h.saveError(c, err)
		return
	}
	response.OK(c, SaveResult{Event: ev, Assignments: assignments})
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.controller.Delete(c.Request.Context(), id); err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// RescheduleRequest is the body for PATCH /events/:id/reschedule.
type RescheduleRequest struct {
	Start time.Time `json:"start_time" binding:"required"`
	End   time.Time `json:"end_time" binding:"required"`
}

// Reschedule handles PATCH /events/:id/reschedule (drag-to-reschedule).
func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ev, err := h.controller.Reschedule(c.Request.Context(), id, req.Start, req.End)
	if err != nil {
		h.saveError(c, err)
		return
	}
	response.OK(c, ev)
}

// Confirm handles POST /events/:id/confirm (confirm-and-notify).
func (h *Handler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	bearer, _ := c.Get(middleware.ContextBearerToken)
	token, _ := bearer.(string)

	ev, err := h.controller.ConfirmAndNotify(c.Request.Context(), id, token)
	if err != nil {
		if ev != nil {
			// status committed, notification failed; no rollback
			c.JSON(http.StatusBadGateway, response.Body{Success: false, Data: ev, Error: "event confirmed but notification failed: " + err.Error()})
			return
		}
		if store.IsNotFound(err) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to confirm event")
		return
	}
	response.OK(c, ev)
}

func (h *Handler) saveError(c *gin.Context, err error) {
	switch {
	case store.IsValidation(err):
		response.BadRequest(c, err.Error())
	case store.IsNotFound(err):
		response.NotFound(c, "event not found")
	case store.IsConstraint(err):
		response.Conflict(c, "referenced entity is invalid: "+err.Error())
	default:
		response.Internal(c, "failed to save event")
	}
}
