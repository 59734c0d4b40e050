package worker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"titledoctor/features/job"
	"titledoctor/internal/bus"
	"titledoctor/internal/config"
	"titledoctor/internal/worker"
)

// pipeline wires all five consumers onto the in-memory bus the same
// way the app does, sharing one lock table across stages.
type pipeline struct {
	store     *job.MemoryStore
	bus       *bus.MemoryBus
	resolver  *MockResolver
	lister    *MockLister
	generator *MockGenerator
	sender    *MockSender
	sent      []string
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	p := &pipeline{
		store:     job.NewMemoryStore(),
		bus:       bus.NewMemoryBus(),
		resolver:  new(MockResolver),
		lister:    new(MockLister),
		generator: new(MockGenerator),
		sender:    new(MockSender),
	}

	locks := worker.NewJobLocks()
	subs := map[string]interface {
		HandleMessage(body []byte) error
	}{
		config.TopicSubmitted:       worker.NewResolverConsumer(p.store, p.resolver, p.bus, locks, testTimeout),
		config.TopicChannelResolved: worker.NewFetcherConsumer(p.store, p.lister, p.bus, locks, testTimeout),
		config.TopicVideosFetched:   worker.NewTitlesConsumer(p.store, p.generator, p.bus, locks, testTimeout),
		config.TopicTitlesReady:     worker.NewNotifierConsumer(p.store, p.sender, p.bus, locks, testTimeout),
	}
	for topic, c := range subs {
		require.NoError(t, p.bus.Subscribe(topic, c.HandleMessage))
	}

	errNotifier := worker.NewErrorNotifierConsumer(p.sender, p.bus, testTimeout)
	for _, topic := range config.FailureTopics {
		require.NoError(t, p.bus.Subscribe(topic, errNotifier.HandleMessage))
	}

	p.bus.Subscribe(config.TopicEmailSent, func(body []byte) error {
		p.sent = append(p.sent, config.TopicEmailSent)
		return nil
	})
	p.bus.Subscribe(config.TopicErrorNotified, func(body []byte) error {
		p.sent = append(p.sent, config.TopicErrorNotified)
		return nil
	})

	return p
}

func (p *pipeline) submit(t *testing.T, channel string) *job.Job {
	t.Helper()
	j := job.New(channel, "a@b.com")
	require.NoError(t, p.store.Put(context.Background(), j))
	require.NoError(t, p.bus.Publish(config.TopicSubmitted, mustMarshal(worker.SubmittedPayload{
		JobID: j.ID, Channel: channel, Email: "a@b.com",
	})))
	return j
}

func TestPipeline_EndToEnd_Success(t *testing.T) {
	p := newPipeline(t)

	p.resolver.On("ResolveHandle", mock.Anything, "exampleChannel").
		Return("UC123", "Example Channel", nil)
	p.lister.On("RecentVideos", mock.Anything, "UC123").
		Return(channelVideos("UC123", 3), nil)
	p.generator.On("ImproveTitles", mock.Anything, mock.Anything).
		Return(sampleImproved(), nil)
	p.sender.On("Send", mock.Anything, "a@b.com", "Viral Title Ideas for Example Channel", mock.Anything).
		Return("email_1", nil)

	j := p.submit(t, "@exampleChannel")

	got, err := p.store.Get(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, got.Status)
	assert.Equal(t, "UC123", got.ChannelID)
	assert.Len(t, got.Videos, 3)
	assert.NotEmpty(t, got.ImprovedTitles)
	assert.True(t, got.EmailSent)
	assert.Equal(t, "email_1", got.DeliveryID)

	assert.Equal(t, []string{config.TopicEmailSent}, p.sent)
	p.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestPipeline_ChannelNotFound(t *testing.T) {
	p := newPipeline(t)

	p.resolver.On("SearchChannel", mock.Anything, "NoSuchChannel").Return("", "", nil)
	p.sender.On("Send", mock.Anything, "a@b.com", "Request Failed - YouTube Title Processor", mock.Anything).
		Return("email_err", nil)

	j := p.submit(t, "NoSuchChannel")

	got, err := p.store.Get(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Equal(t, "Channel not found", got.Error)

	assert.Equal(t, []string{config.TopicErrorNotified}, p.sent)
	p.lister.AssertNotCalled(t, "RecentVideos", mock.Anything, mock.Anything)
	p.generator.AssertNotCalled(t, "ImproveTitles", mock.Anything, mock.Anything)
}

func TestPipeline_GenerationFailure(t *testing.T) {
	p := newPipeline(t)

	p.resolver.On("ResolveHandle", mock.Anything, "exampleChannel").
		Return("UC123", "Example Channel", nil)
	p.lister.On("RecentVideos", mock.Anything, "UC123").
		Return(channelVideos("UC123", 2), nil)
	p.generator.On("ImproveTitles", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	p.sender.On("Send", mock.Anything, "a@b.com", "Request Failed - YouTube Title Processor", mock.Anything).
		Return("email_err", nil)

	j := p.submit(t, "@exampleChannel")

	got, err := p.store.Get(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, got.Status)
	assert.Len(t, got.Videos, 2)
	assert.Empty(t, got.ImprovedTitles)

	assert.Equal(t, []string{config.TopicErrorNotified}, p.sent)
}

func TestPipeline_RedeliveredEvent_NoDuplicateEmail(t *testing.T) {
	p := newPipeline(t)

	p.resolver.On("ResolveHandle", mock.Anything, "exampleChannel").
		Return("UC123", "Example Channel", nil)
	p.lister.On("RecentVideos", mock.Anything, "UC123").
		Return(channelVideos("UC123", 1), nil)
	p.generator.On("ImproveTitles", mock.Anything, mock.Anything).
		Return(sampleImproved(), nil)
	p.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("email_1", nil)

	j := p.submit(t, "@exampleChannel")

	// Redeliver the trigger after completion; the terminal job drops it.
	require.NoError(t, p.bus.Publish(config.TopicSubmitted, mustMarshal(worker.SubmittedPayload{
		JobID: j.ID, Channel: "@exampleChannel", Email: "a@b.com",
	})))

	p.sender.AssertNumberOfCalls(t, "Send", 1)
	assert.Equal(t, []string{config.TopicEmailSent}, p.sent)

	got, err := p.store.Get(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, got.Status)
}
