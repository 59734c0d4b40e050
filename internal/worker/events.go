package worker

import "titledoctor/features/job"

// One payload type per topic; handlers decode the fixed shape for the
// topic they subscribed to instead of probing an untyped map.

// SubmittedPayload starts the pipeline (topic "submitted").
type SubmittedPayload struct {
	JobID         string `json:"jobId"`
	Channel       string `json:"channel"`
	Email         string `json:"email"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ChannelResolvedPayload carries the canonical channel identity
// (topic "channel-resolved").
type ChannelResolvedPayload struct {
	JobID         string `json:"jobId"`
	ChannelID     string `json:"channelId"`
	ChannelName   string `json:"channelName"`
	Email         string `json:"email"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// VideosFetchedPayload carries the filtered video list
// (topic "videos-fetched").
type VideosFetchedPayload struct {
	JobID         string      `json:"jobId"`
	ChannelName   string      `json:"channelName"`
	Videos        []job.Video `json:"videos"`
	Email         string      `json:"email"`
	CorrelationID string      `json:"correlationId,omitempty"`
}

// TitlesReadyPayload carries the generated titles (topic "titles-ready").
type TitlesReadyPayload struct {
	JobID          string              `json:"jobId"`
	ChannelName    string              `json:"channelName"`
	ImprovedTitles []job.ImprovedTitle `json:"improvedTitles"`
	Email          string              `json:"email"`
	CorrelationID  string              `json:"correlationId,omitempty"`
}

// FailurePayload is shared by every failure topic. It carries the email
// and error text so the error notifier never re-reads the job store.
type FailurePayload struct {
	JobID         string `json:"jobId"`
	Email         string `json:"email"`
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// EmailSentPayload marks report delivery (topic "email-sent").
type EmailSentPayload struct {
	JobID         string `json:"jobId"`
	Email         string `json:"email"`
	DeliveryID    string `json:"deliveryId"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorNotifiedPayload marks failure-notice delivery
// (topic "error-notified").
type ErrorNotifiedPayload struct {
	JobID         string `json:"jobId"`
	Email         string `json:"email"`
	DeliveryID    string `json:"deliveryId"`
	CorrelationID string `json:"correlationId,omitempty"`
}
