package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"titledoctor/features/job"
	"titledoctor/internal/config"
	"titledoctor/internal/middleware"
)

// TitlesConsumer generates improved title variants for the fetched
// videos. Subscribed to "videos-fetched"; publishes "titles-ready", or
// "videos-failed" — generation failures share the fetch stage's failure
// topic.
type TitlesConsumer struct {
	store     job.Store
	generator TitleGenerator
	pub       EventPublisher
	locks     *JobLocks
	timeout   time.Duration
}

func NewTitlesConsumer(store job.Store, generator TitleGenerator, pub EventPublisher, locks *JobLocks, timeout time.Duration) *TitlesConsumer {
	return &TitlesConsumer{store: store, generator: generator, pub: pub, locks: locks, timeout: timeout}
}

func (c *TitlesConsumer) HandleMessage(body []byte) error {
	var p VideosFetchedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		slog.Error("invalid message format", "topic", config.TopicVideosFetched, "error", err)
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

	slog.InfoContext(ctx, "generating titles", "job_id", j.ID, "videos", len(p.Videos))

	j.Status = job.StatusGeneratingTitles
	if err := c.store.Put(ctx, j); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	improved, err := c.generator.ImproveTitles(callCtx, p.Videos)
	if err != nil {
		slog.ErrorContext(ctx, "title generation error", "job_id", j.ID, "error", err)
		failJob(ctx, c.store, c.pub, config.TopicVideosFailed, j, err.Error(), err.Error())
		return nil
	}

	slog.InfoContext(ctx, "titles generated", "job_id", j.ID, "count", len(improved))

	j.ImprovedTitles = improved
	j.Status = job.StatusTitlesReady
	if err := c.store.Put(ctx, j); err != nil {
		return err
	}

	publish(ctx, c.pub, config.TopicTitlesReady, TitlesReadyPayload{
		JobID:          j.ID,
		ChannelName:    p.ChannelName,
		ImprovedTitles: improved,
		Email:          j.Email,
		CorrelationID:  middleware.GetCorrelationID(ctx),
	})
	return nil
}
