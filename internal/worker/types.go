package worker

import (
	"context"

	"titledoctor/features/job"
)

// ChannelVideo is one raw search result from the upstream video
// listing, before the fetcher filters out cross-channel matches.
type ChannelVideo struct {
	ChannelID string
	Video     job.Video
}

// ChannelResolver maps a human-entered channel reference to a canonical
// channel identifier and display name. An empty identifier with a nil
// error means no match.
type ChannelResolver interface {
	ResolveHandle(ctx context.Context, handle string) (id, name string, err error)
	SearchChannel(ctx context.Context, query string) (id, name string, err error)
}

// VideoLister retrieves the most recent uploads for a channel,
// most-recent-first, bounded to a small fixed count.
type VideoLister interface {
	RecentVideos(ctx context.Context, channelID string) ([]ChannelVideo, error)
}

// TitleGenerator produces improved title variants for a batch of videos.
type TitleGenerator interface {
	ImproveTitles(ctx context.Context, videos []job.Video) ([]job.ImprovedTitle, error)
}

// EmailSender delivers one transactional email and returns the
// provider's delivery identifier.
type EmailSender interface {
	Send(ctx context.Context, to, subject, text string) (string, error)
}

// EventPublisher is the bus write side as seen by stages.
type EventPublisher interface {
	Publish(topic string, body []byte) error
}
