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

// maxVideos caps how many recent uploads a job carries forward.
const maxVideos = 5

// FetcherConsumer retrieves the channel's recent uploads. Subscribed to
// "channel-resolved"; publishes "videos-fetched" or "videos-failed".
type FetcherConsumer struct {
	store   job.Store
	lister  VideoLister
	pub     EventPublisher
	locks   *JobLocks
	timeout time.Duration
}

func NewFetcherConsumer(store job.Store, lister VideoLister, pub EventPublisher, locks *JobLocks, timeout time.Duration) *FetcherConsumer {
	return &FetcherConsumer{store: store, lister: lister, pub: pub, locks: locks, timeout: timeout}
}

func (c *FetcherConsumer) HandleMessage(body []byte) error {
	var p ChannelResolvedPayload
	if err := json.Unmarshal(body, &p); err != nil {
		slog.Error("invalid message format", "topic", config.TopicChannelResolved, "error", err)
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

	slog.InfoContext(ctx, "fetching videos", "job_id", j.ID, "channel_id", p.ChannelID)

	j.Status = job.StatusFetchingVideos
	j.ChannelID = p.ChannelID
	j.ChannelName = p.ChannelName
	if err := c.store.Put(ctx, j); err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	results, err := c.lister.RecentVideos(callCtx, p.ChannelID)
	if err != nil {
		slog.ErrorContext(ctx, "video fetch error", "job_id", j.ID, "error", err)
		failJob(ctx, c.store, c.pub, config.TopicVideosFailed, j,
			err.Error(), "Failed to fetch videos. Please try again later")
		return nil
	}

	if len(results) == 0 {
		slog.WarnContext(ctx, "no videos found for channel", "job_id", j.ID, "channel_id", p.ChannelID)
		failJob(ctx, c.store, c.pub, config.TopicVideosFailed, j,
			"No videos found", "No videos found for this channel")
		return nil
	}

	videos := filterVideos(results, p.ChannelID)
	if len(videos) == 0 {
		slog.WarnContext(ctx, "no valid videos after filtering", "job_id", j.ID, "channel_id", p.ChannelID)
		failJob(ctx, c.store, c.pub, config.TopicVideosFailed, j,
			"No videos found", "No recent videos found for this channel")
		return nil
	}

	slog.InfoContext(ctx, "videos fetched", "job_id", j.ID, "count", len(videos))

	j.Videos = videos
	j.Status = job.StatusVideosFetched
	if err := c.store.Put(ctx, j); err != nil {
		return err
	}

	publish(ctx, c.pub, config.TopicVideosFetched, VideosFetchedPayload{
		JobID:         j.ID,
		ChannelName:   p.ChannelName,
		Videos:        videos,
		Email:         j.Email,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	return nil
}

// filterVideos drops results whose channel does not exactly match the
// resolved channel (the search endpoint can return cross-channel hits)
// and caps the remainder at maxVideos.
func filterVideos(results []ChannelVideo, channelID string) []job.Video {
	videos := make([]job.Video, 0, maxVideos)
	for _, r := range results {
		if r.ChannelID != channelID {
			continue
		}
		videos = append(videos, r.Video)
		if len(videos) == maxVideos {
			break
		}
	}
	return videos
}
