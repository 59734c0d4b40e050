package youtube

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"titledoctor/features/job"
	"titledoctor/internal/worker"
)

// maxResults is the upstream search bound; the fetcher stage caps the
// filtered list further.
const maxResults = 10

// Client wraps the YouTube Data API v3 for channel resolution and
// recent-video listing.
type Client struct {
	svc *youtube.Service
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube client error: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ResolveHandle performs an exact lookup of an "@handle" (without the
// leading "@"). Empty results mean no match, not an error.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, string, error) {
	res, err := c.svc.Channels.List([]string{"snippet"}).
		ForHandle(handle).
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("channel lookup failed: %w", err)
	}
	if len(res.Items) == 0 {
		return "", "", nil
	}
	item := res.Items[0]
	return item.Id, item.Snippet.Title, nil
}

// SearchChannel performs a free-text channel search and takes the first
// result.
func (c *Client) SearchChannel(ctx context.Context, query string) (string, string, error) {
	res, err := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("channel search failed: %w", err)
	}
	if len(res.Items) == 0 {
		return "", "", nil
	}
	item := res.Items[0]
	return item.Id.ChannelId, item.Snippet.Title, nil
}

// RecentVideos lists the channel's latest uploads, most recent first.
// Results keep their snippet channel ID so the fetcher can drop
// cross-channel matches the search endpoint sometimes returns.
func (c *Client) RecentVideos(ctx context.Context, channelID string) ([]worker.ChannelVideo, error) {
	res, err := c.svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("video listing failed: %w", err)
	}

	videos := make([]worker.ChannelVideo, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		thumbnail := ""
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
			thumbnail = item.Snippet.Thumbnails.Default.Url
		}
		videos = append(videos, worker.ChannelVideo{
			ChannelID: item.Snippet.ChannelId,
			Video: job.Video{
				VideoID:     item.Id.VideoId,
				Title:       item.Snippet.Title,
				URL:         fmt.Sprintf("https://www.youtube.com/watch?v=%s", item.Id.VideoId),
				PublishedAt: item.Snippet.PublishedAt,
				Thumbnail:   thumbnail,
			},
		})
	}

	slog.DebugContext(ctx, "listed recent videos", "channel_id", channelID, "count", len(videos))
	return videos, nil
}
