package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"titledoctor/features/job"
	"titledoctor/internal/config"
	"titledoctor/internal/middleware"
)

// NotifierConsumer renders the report and delivers it by email.
// Subscribed to "titles-ready"; publishes "email-sent". A delivery
// failure marks the job failed but deliberately emits nothing on the
// failure topics: there is no error-path guarantee after the final
// stage, and the job record already reflects the outcome.
type NotifierConsumer struct {
	store   job.Store
	sender  EmailSender // nil when the provider is not configured
	pub     EventPublisher
	locks   *JobLocks
	timeout time.Duration
}

func NewNotifierConsumer(store job.Store, sender EmailSender, pub EventPublisher, locks *JobLocks, timeout time.Duration) *NotifierConsumer {
	return &NotifierConsumer{store: store, sender: sender, pub: pub, locks: locks, timeout: timeout}
}

func (c *NotifierConsumer) HandleMessage(body []byte) error {
	var p TitlesReadyPayload
	if err := json.Unmarshal(body, &p); err != nil {
		slog.Error("invalid message format", "topic", config.TopicTitlesReady, "error", err)
		return nil
	}

	ctx := payloadContext(p.CorrelationID)

	if p.JobID == "" || p.Email == "" {
		slog.ErrorContext(ctx, "missing jobId or email, dropping", "job_id", p.JobID)
		return nil
	}

	unlock := c.locks.Lock(p.JobID)
	defer unlock()

	j := loadJob(ctx, c.store, p.JobID)
	if j == nil {
		return nil
	}

	slog.InfoContext(ctx, "sending report", "job_id", j.ID, "channel", p.ChannelName)

	j.Status = job.StatusSendingEmail
	if err := c.store.Put(ctx, j); err != nil {
		return err
	}

	if c.sender == nil {
		c.failDelivery(ctx, j, "Email provider not configured")
		return nil
	}

	report := BuildReport(p.ChannelName, p.ImprovedTitles)
	subject := fmt.Sprintf("Viral Title Ideas for %s", p.ChannelName)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	deliveryID, err := c.sender.Send(callCtx, p.Email, subject, report)
	if err != nil {
		c.failDelivery(ctx, j, err.Error())
		return nil
	}

	j.Complete(deliveryID)
	if err := c.store.Put(ctx, j); err != nil {
		return err
	}

	slog.InfoContext(ctx, "report delivered", "job_id", j.ID, "delivery_id", deliveryID)

	publish(ctx, c.pub, config.TopicEmailSent, EmailSentPayload{
		JobID:         j.ID,
		Email:         j.Email,
		DeliveryID:    deliveryID,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	return nil
}

func (c *NotifierConsumer) failDelivery(ctx context.Context, j *job.Job, msg string) {
	slog.ErrorContext(ctx, "report delivery failed", "job_id", j.ID, "error", msg)
	j.Fail(msg)
	if err := c.store.Put(ctx, j); err != nil {
		slog.ErrorContext(ctx, "failed to record job failure", "job_id", j.ID, "error", err)
	}
}
