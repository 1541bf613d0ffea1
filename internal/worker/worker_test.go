package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/pkg/queue"
)

type fakeMessageLog struct {
	appended []models.SmsMessage
	err      error
}

func (f *fakeMessageLog) Append(_ context.Context, m *models.SmsMessage) (*models.SmsMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *m
	cp.ID = uuid.New()
	f.appended = append(f.appended, cp)
	return &cp, nil
}

type fakeSender struct {
	id    string
	err   error
	calls int
}

func (f *fakeSender) Send(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.id, f.err
}

func smsJob(t *testing.T, payload queue.SMSPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeSMS, Payload: raw}
}

func TestProcess_SendsAndLogs(t *testing.T) {
	log := &fakeMessageLog{}
	sender := &fakeSender{id: "prov-1"}
	p := NewSMSProcessor(log, sender, nil, nil)

	eventID := uuid.New()
	clientID := uuid.New()
	job := smsJob(t, queue.SMSPayload{
		EventID:  eventID,
		ClientID: &clientID,
		ToPhone:  "+15551234567",
		Body:     "see you Tuesday",
	})

	require.NoError(t, p.Process(context.Background(), job))
	require.Equal(t, 1, sender.calls)
	require.Len(t, log.appended, 1)

	got := log.appended[0]
	require.Equal(t, models.SmsStatusSent, got.Status)
	require.Equal(t, "prov-1", got.ProviderMessageID)
	require.Equal(t, &eventID, got.EventID)
	require.NotNil(t, got.SentAt)
}

func TestProcess_ProviderFailureLogsFailedRow(t *testing.T) {
	log := &fakeMessageLog{}
	sender := &fakeSender{err: errors.New("carrier rejected")}
	p := NewSMSProcessor(log, sender, nil, nil)

	job := smsJob(t, queue.SMSPayload{EventID: uuid.New(), ToPhone: "+15551234567", Body: "hi"})
	err := p.Process(context.Background(), job)
	require.Error(t, err)

	require.Len(t, log.appended, 1)
	require.Equal(t, models.SmsStatusFailed, log.appended[0].Status)
	require.Nil(t, log.appended[0].SentAt)
}

func TestProcess_RejectsUnknownTypeAndBadPayload(t *testing.T) {
	log := &fakeMessageLog{}
	p := NewSMSProcessor(log, &fakeSender{}, nil, nil)

	err := p.Process(context.Background(), &queue.Job{ID: "j1", Type: "email"})
	require.Error(t, err)

	err = p.Process(context.Background(), &queue.Job{ID: "j2", Type: queue.JobTypeSMS, Payload: []byte("{")})
	require.Error(t, err)

	job := smsJob(t, queue.SMSPayload{EventID: uuid.New()})
	err = p.Process(context.Background(), job)
	require.Error(t, err)

	require.Empty(t, log.appended)
}
