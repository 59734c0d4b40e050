package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks a job along the pipeline. Transitions move strictly
// forward, or jump to StatusFailed from anywhere. Failed and completed
// are terminal.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusResolvingChannel Status = "resolving_channel"
	StatusFetchingVideos   Status = "fetching_videos"
	StatusVideosFetched    Status = "videos_fetched"
	StatusGeneratingTitles Status = "generating_titles"
	StatusTitlesReady      Status = "titles_ready"
	StatusSendingEmail     Status = "sending_email"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Video is one recent upload of the resolved channel. Immutable once
// stored on the job.
type Video struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Thumbnail   string `json:"thumbnail"`
}

// Variant styles, in recommendation precedence order.
const (
	StyleViral        = "viral"
	StyleSEO          = "seo"
	StyleProfessional = "professional"
)

// TitleVariant is one generated rewrite of an original title.
type TitleVariant struct {
	Style  string `json:"style"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
	Score  int    `json:"score"`
}

// ImprovedTitle holds the generated variants for one video.
type ImprovedTitle struct {
	Original       string         `json:"original"`
	Variants       []TitleVariant `json:"variants"`
	ThumbnailTexts []string       `json:"thumbnailTexts,omitempty"`
	// Recommended names the style of the highest-scoring variant.
	Recommended string `json:"recommended"`
	URL         string `json:"url"`
}

// Best returns the variant named by Recommended, or the first variant
// when the name does not match.
func (t ImprovedTitle) Best() TitleVariant {
	for _, v := range t.Variants {
		if v.Style == t.Recommended {
			return v
		}
	}
	if len(t.Variants) > 0 {
		return t.Variants[0]
	}
	return TitleVariant{}
}

// Job is one end-to-end title-improvement request. Stages load the
// record, mutate it, and write it back whole; the bus serializes
// delivery per job so there is never more than one writer.
type Job struct {
	ID          string `json:"jobId"`
	Channel     string `json:"channel"`
	Email       string `json:"email"`
	Status      Status `json:"status"`
	ChannelID   string `json:"channelId,omitempty"`
	ChannelName string `json:"channelName,omitempty"`

	Videos         []Video         `json:"videos,omitempty"`
	ImprovedTitles []ImprovedTitle `json:"improvedTitles,omitempty"`

	Error       string     `json:"error,omitempty"`
	EmailSent   bool       `json:"emailSent,omitempty"`
	DeliveryID  string     `json:"deliveryId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// New creates a queued job for the given submission.
func New(channel, email string) *Job {
	return &Job{
		ID:        NewID(),
		Channel:   channel,
		Email:     email,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
}

// NewID builds a job identifier from the current time and a random
// suffix, e.g. "job_1714496400123_1a2b3c4d".
func NewID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("job_%d_%s", time.Now().UnixMilli(), suffix)
}

// Fail marks the job terminally failed with a human-readable message.
// A job that already reached a terminal state is left untouched.
func (j *Job) Fail(msg string) {
	if j.Status.Terminal() {
		return
	}
	j.Status = StatusFailed
	j.Error = msg
}

// Complete records successful report delivery.
func (j *Job) Complete(deliveryID string) {
	if j.Status.Terminal() {
		return
	}
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.EmailSent = true
	j.DeliveryID = deliveryID
	j.CompletedAt = &now
}
