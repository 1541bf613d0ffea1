package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewsched/backend/internal/auth"
	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/queue"
	"github.com/crewsched/backend/pkg/response"
)

// EventGetter loads one event by id.
type EventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// ProjectGetter loads one project by id.
type ProjectGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// ClientGetter loads one client by id.
type ClientGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// Enqueuer hands messages to the dispatch queue.
type Enqueuer interface {
	EnqueueSMS(ctx context.Context, payload queue.SMSPayload) error
}

// Handler implements the send-schedule-sms function endpoint. It resolves the
// event down to the client's phone number and hands the message to the
// dispatch queue; actual provider delivery happens in the worker.
type Handler struct {
	jwt      *auth.JWTService
	events   EventGetter
	projects ProjectGetter
	clients  ClientGetter
	queue    Enqueuer
	logger   *zap.Logger
}

// NewHandler creates the SMS function handler.
func NewHandler(jwt *auth.JWTService, events EventGetter, projects ProjectGetter, clients ClientGetter, q Enqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{jwt: jwt, events: events, projects: projects, clients: clients, queue: q, logger: logger}
}

// RegisterRoutes mounts the function endpoint. It authorizes from the raw
// Authorization header rather than the shared middleware so it can run on an
// unauthenticated route group, matching how the trigger forwards credentials.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/functions/send-schedule-sms", h.Send)
}

// SendRequest is the function's request body.
type SendRequest struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
}

// Send handles POST /functions/send-schedule-sms.
func (h *Handler) Send(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		response.Unauthorized(c, "missing bearer token")
		return
	}
	if _, err := h.jwt.Validate(strings.TrimPrefix(header, "Bearer ")); err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	ev, err := h.events.GetByID(ctx, req.EventID)
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}
	if ev.ProjectID == nil {
		response.BadRequest(c, "event has no project")
		return
	}

	project, err := h.projects.GetByID(ctx, *ev.ProjectID)
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to load project")
		return
	}
	if project.ClientID == nil {
		response.BadRequest(c, "project has no client")
		return
	}

	client, err := h.clients.GetByID(ctx, *project.ClientID)
	if err != nil {
		if store.IsNotFound(err) {
			response.NotFound(c, "client not found")
			return
		}
		response.Internal(c, "failed to load client")
		return
	}
	if client.Phone == "" {
		response.BadRequest(c, "client has no phone number")
		return
	}

	payload := queue.SMSPayload{
		EventID:        ev.ID,
		OrganizationID: ev.OrganizationID,
		ClientID:       &client.ID,
		ToPhone:        client.Phone,
		Body:           composeBody(ev, project, client),
	}
	if err := h.queue.EnqueueSMS(ctx, payload); err != nil {
		h.logger.Error("failed to enqueue sms", zap.String("event_id", ev.ID.String()), zap.Error(err))
		response.Internal(c, "failed to queue message")
		return
	}

	response.OK(c, gin.H{"queued": true, "event_id": ev.ID})
}

func composeBody(ev *models.Event, project *models.Project, client *models.Client) string {
	when := ev.StartTime
	if ev.Timezone != "" {
		if loc, err := time.LoadLocation(ev.Timezone); err == nil {
			when = when.In(loc)
		}
	}
	return fmt.Sprintf("Hi %s, your %s appointment is confirmed for %s.",
		client.Name, project.Title, when.Format("Mon Jan 2 at 3:04 PM"))
}
