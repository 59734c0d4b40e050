package config

// Event topics. One publisher per topic, dispatched per job; the
// pipeline moves strictly forward so only one stage writes a given job
// at a time.
const (
	// TopicSubmitted starts the pipeline for an accepted submission.
	TopicSubmitted = "submitted"

	// TopicChannelResolved carries the canonical channel identifier.
	TopicChannelResolved = "channel-resolved"

	// TopicChannelFailed reports a resolution failure to the error notifier.
	TopicChannelFailed = "channel-failed"

	// TopicVideosFetched carries the recent-video list.
	TopicVideosFetched = "videos-fetched"

	// TopicVideosFailed reports fetch and generation failures.
	TopicVideosFailed = "videos-failed"

	// TopicTitlesReady carries the improved-title list.
	TopicTitlesReady = "titles-ready"

	// TopicEmailSent marks successful report delivery.
	TopicEmailSent = "email-sent"

	// TopicErrorNotified marks successful failure-notice delivery.
	TopicErrorNotified = "error-notified"
)

// FailureTopics lists every topic the error notifier subscribes to.
var FailureTopics = []string{TopicChannelFailed, TopicVideosFailed}
