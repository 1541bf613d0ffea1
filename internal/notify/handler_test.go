package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewsched/backend/internal/auth"
	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/internal/store"
	"github.com/crewsched/backend/pkg/queue"
)

type fakeEvents struct{ ev *models.Event }

func (f *fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if f.ev == nil || f.ev.ID != id {
		return nil, store.ErrNotFound
	}
	return f.ev, nil
}

type fakeProjects struct{ p *models.Project }

func (f *fakeProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	if f.p == nil || f.p.ID != id {
		return nil, store.ErrNotFound
	}
	return f.p, nil
}

type fakeClients struct{ c *models.Client }

func (f *fakeClients) GetByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	if f.c == nil || f.c.ID != id {
		return nil, store.ErrNotFound
	}
	return f.c, nil
}

type fakeEnqueuer struct {
	payloads []queue.SMSPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueSMS(_ context.Context, p queue.SMSPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func setupSendTest(t *testing.T) (*gin.Engine, *fakeEnqueuer, *models.Event, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("test-secret", 1)
	token, err := jwtSvc.Generate(uuid.New(), "owner@example.com", "admin")
	require.NoError(t, err)

	client := &models.Client{ID: uuid.New(), Name: "Dana", Phone: "+15551234567"}
	project := &models.Project{ID: uuid.New(), ClientID: &client.ID, Title: "Fence install"}
	event := &models.Event{ID: uuid.New(), ProjectID: &project.ID, Status: models.EventStatusConfirmed}

	enq := &fakeEnqueuer{}
	h := NewHandler(jwtSvc, &fakeEvents{ev: event}, &fakeProjects{p: project}, &fakeClients{c: client}, enq, nil)

	r := gin.New()
	h.RegisterRoutes(&r.RouterGroup)
	return r, enq, event, token
}

func postSend(r *gin.Engine, token string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/functions/send-schedule-sms", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSend_QueuesMessageForClient(t *testing.T) {
	r, enq, event, token := setupSendTest(t)

	w := postSend(r, token, gin.H{"event_id": event.ID})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, enq.payloads, 1)
	p := enq.payloads[0]
	require.Equal(t, event.ID, p.EventID)
	require.Equal(t, "+15551234567", p.ToPhone)
	require.Contains(t, p.Body, "Dana")
	require.Contains(t, p.Body, "Fence install")
}

func TestSend_RejectsMissingOrInvalidToken(t *testing.T) {
	r, enq, event, _ := setupSendTest(t)

	w := postSend(r, "", gin.H{"event_id": event.ID})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postSend(r, "not-a-jwt", gin.H{"event_id": event.ID})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Empty(t, enq.payloads)
}

func TestSend_UnknownEventIs404(t *testing.T) {
	r, enq, _, token := setupSendTest(t)

	w := postSend(r, token, gin.H{"event_id": uuid.New()})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, enq.payloads)
}
