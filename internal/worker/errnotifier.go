package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"titledoctor/internal/config"
	"titledoctor/internal/middleware"
)

// errorSubject is the fixed subject line of the failure notice.
const errorSubject = "Request Failed - YouTube Title Processor"

// ErrorNotifierConsumer delivers a best-effort failure notice.
// Subscribed to every failure topic; publishes "error-notified" on
// successful delivery. It never mutates job status — the failing stage
// already marked the job — and never lets a delivery problem escape.
type ErrorNotifierConsumer struct {
	sender  EmailSender // nil when the provider is not configured
	pub     EventPublisher
	timeout time.Duration
}

func NewErrorNotifierConsumer(sender EmailSender, pub EventPublisher, timeout time.Duration) *ErrorNotifierConsumer {
	return &ErrorNotifierConsumer{sender: sender, pub: pub, timeout: timeout}
}

func (c *ErrorNotifierConsumer) HandleMessage(body []byte) error {
	var p FailurePayload
	if err := json.Unmarshal(body, &p); err != nil {
		slog.Error("invalid message format", "error", err)
		return nil
	}

	ctx := payloadContext(p.CorrelationID)

	if p.Email == "" {
		slog.ErrorContext(ctx, "missing email, cannot send failure notice", "job_id", p.JobID)
		return nil
	}

	errMsg := p.Error
	if errMsg == "" {
		errMsg = "Unknown error occurred"
	}

	slog.InfoContext(ctx, "sending failure notice", "job_id", p.JobID, "error", errMsg)

	if c.sender == nil {
		slog.WarnContext(ctx, "email provider not configured, skipping failure notice", "job_id", p.JobID)
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	deliveryID, err := c.sender.Send(callCtx, p.Email, errorSubject, BuildFailureNotice(errMsg))
	if err != nil {
		slog.ErrorContext(ctx, "failed to send failure notice", "job_id", p.JobID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "failure notice sent", "job_id", p.JobID, "delivery_id", deliveryID)

	publish(ctx, c.pub, config.TopicErrorNotified, ErrorNotifiedPayload{
		JobID:         p.JobID,
		Email:         p.Email,
		DeliveryID:    deliveryID,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	return nil
}
