package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewsched/backend/internal/models"
	"github.com/crewsched/backend/pkg/queue"
)

// Sender delivers one SMS through a provider and returns the provider's
// message id.
type Sender interface {
	Send(ctx context.Context, toPhone, body string) (providerMessageID string, err error)
}

// MessageLog appends delivery attempts (implemented by the messages repository).
type MessageLog interface {
	Append(ctx context.Context, m *models.SmsMessage) (*models.SmsMessage, error)
}

// LogSender is the development provider: it logs the message and reports
// success. Swap in a real provider implementation for production delivery.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only SMS sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the outbound message and returns a generated id.
func (s *LogSender) Send(_ context.Context, toPhone, body string) (string, error) {
	id := "log-" + uuid.New().String()
	s.logger.Info("sms (log provider)", zap.String("to", toPhone), zap.String("body", body), zap.String("provider_message_id", id))
	return id, nil
}

// SMSProcessor processes SMS dispatch jobs: send through the provider, then
// append the delivery attempt to the message log.
type SMSProcessor struct {
	msgRepo MessageLog
	sender  Sender
	queue   *queue.Queue
	logger  *zap.Logger
}

// NewSMSProcessor creates an SMS dispatch processor.
func NewSMSProcessor(msgRepo MessageLog, sender Sender, q *queue.Queue, logger *zap.Logger) *SMSProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSProcessor{msgRepo: msgRepo, sender: sender, queue: q, logger: logger}
}

// Process executes one SMS dispatch job. The delivery attempt is logged to
// sms_messages whether the provider accepted it or not.
func (p *SMSProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeSMS {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.SMSPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.ToPhone == "" {
		return fmt.Errorf("job %s has no destination phone", job.ID)
	}

	providerID, sendErr := p.sender.Send(ctx, payload.ToPhone, payload.Body)

	now := time.Now().UTC()
	msg := &models.SmsMessage{
		OrganizationID:    payload.OrganizationID,
		EventID:           &payload.EventID,
		ClientID:          payload.ClientID,
		ToPhone:           payload.ToPhone,
		Body:              payload.Body,
		Status:            models.SmsStatusSent,
		ProviderMessageID: providerID,
		SentAt:            &now,
	}
	if sendErr != nil {
		msg.Status = models.SmsStatusFailed
		msg.SentAt = nil
	}
	if _, err := p.msgRepo.Append(ctx, msg); err != nil {
		p.logger.Error("append sms log failed", zap.Error(err), zap.String("event_id", payload.EventID.String()))
		return fmt.Errorf("append message log: %w", err)
	}

	if sendErr != nil {
		return fmt.Errorf("provider send: %w", sendErr)
	}
	p.logger.Info("sms dispatched", zap.String("event_id", payload.EventID.String()), zap.String("provider_message_id", providerID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *SMSProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("sms worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
