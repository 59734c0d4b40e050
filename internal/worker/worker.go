package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"titledoctor/features/job"
	"titledoctor/internal/middleware"
)

// payloadContext rebuilds a context for an event handler, carrying the
// correlation ID from the payload (or a fresh one) so worker logs join
// up with the originating request.
func payloadContext(correlationID string) context.Context {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return middleware.WithCorrelationID(context.Background(), correlationID)
}

// failJob records a terminal failure on the job and publishes the
// failure topic so the error notifier can reach the requestor. The
// jobErr message lands on the record; notifyMsg is what the requestor
// sees. Store write failures are logged, not returned — the failure
// event must still go out.
func failJob(ctx context.Context, store job.Store, pub EventPublisher, topic string, j *job.Job, jobErr, notifyMsg string) {
	j.Fail(jobErr)
	if err := store.Put(ctx, j); err != nil {
		slog.ErrorContext(ctx, "failed to record job failure", "job_id", j.ID, "error", err)
	}

	payload := FailurePayload{
		JobID:         j.ID,
		Email:         j.Email,
		Error:         notifyMsg,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	publish(ctx, pub, topic, payload)
}

// publish marshals and publishes one event, logging instead of
// propagating marshal/transport errors on the failure path.
func publish(ctx context.Context, pub EventPublisher, topic string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal event", "topic", topic, "error", err)
		return
	}
	if err := pub.Publish(topic, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "topic", topic, "error", err)
	}
}

// loadJob fetches the job record and decides whether the stage should
// run. A missing record or a terminal status means the event is stale
// (redelivery after completion, or an undeliverable edge); the stage
// drops it without retry.
func loadJob(ctx context.Context, store job.Store, jobID string) *job.Job {
	j, err := store.Get(ctx, jobID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load job, dropping event", "job_id", jobID, "error", err)
		return nil
	}
	if j.Status.Terminal() {
		slog.WarnContext(ctx, "job already terminal, skipping", "job_id", jobID, "status", string(j.Status))
		return nil
	}
	return j
}
