package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"titledoctor/features/job"
	"titledoctor/internal/config"
	"titledoctor/internal/middleware"
)

// ResolverConsumer maps the submitted channel reference to a canonical
// channel ID. Subscribed to "submitted"; publishes "channel-resolved"
// or "channel-failed".
type ResolverConsumer struct {
	store    job.Store
	resolver ChannelResolver
	pub      EventPublisher
	locks    *JobLocks
	timeout  time.Duration
}

func NewResolverConsumer(store job.Store, resolver ChannelResolver, pub EventPublisher, locks *JobLocks, timeout time.Duration) *ResolverConsumer {
	return &ResolverConsumer{store: store, resolver: resolver, pub: pub, locks: locks, timeout: timeout}
}

func (c *ResolverConsumer) HandleMessage(body []byte) error {
	var p SubmittedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		slog.Error("invalid message format", "topic", config.TopicSubmitted, "error", err)
		return nil // don't retry invalid messages
	}

	ctx := payloadContext(p.CorrelationID)

	if p.JobID == "" || p.Email == "" {
		// Undeliverable: nobody to notify and no record to update.
		slog.ErrorContext(ctx, "missing jobId or email, dropping", "job_id", p.JobID)
		return nil
	}

	unlock := c.locks.Lock(p.JobID)
	defer unlock()

	j := loadJob(ctx, c.store, p.JobID)
	if j == nil {
		return nil
	}

	slog.InfoContext(ctx, "resolving channel", "job_id", j.ID, "channel", j.Channel)

	j.Status = job.StatusResolvingChannel
	if err := c.store.Put(ctx, j); err != nil {
		return err // durable write failed, let the transport retry
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var channelID, channelName string
	var err error
	if strings.HasPrefix(p.Channel, "@") {
		channelID, channelName, err = c.resolver.ResolveHandle(callCtx, strings.TrimPrefix(p.Channel, "@"))
	} else {
		channelID, channelName, err = c.resolver.SearchChannel(callCtx, p.Channel)
	}

	if err != nil {
		slog.ErrorContext(ctx, "channel resolution error", "job_id", j.ID, "error", err)
		failJob(ctx, c.store, c.pub, config.TopicChannelFailed, j,
			err.Error(), "Failed to resolve channel. Please try again")
		return nil
	}

	if channelID == "" {
		slog.WarnContext(ctx, "channel not found", "job_id", j.ID, "channel", p.Channel)
		failJob(ctx, c.store, c.pub, config.TopicChannelFailed, j,
			"Channel not found", "Channel not found")
		return nil
	}

	// Status stays resolving_channel; the fetcher advances it.
	publish(ctx, c.pub, config.TopicChannelResolved, ChannelResolvedPayload{
		JobID:         j.ID,
		ChannelID:     channelID,
		ChannelName:   channelName,
		Email:         j.Email,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	return nil
}
