package worker_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"

	"titledoctor/features/job"
	"titledoctor/internal/worker"
)

// Mocks

type MockResolver struct{ mock.Mock }

func (m *MockResolver) ResolveHandle(ctx context.Context, handle string) (string, string, error) {
	args := m.Called(ctx, handle)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockResolver) SearchChannel(ctx context.Context, query string) (string, string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.String(1), args.Error(2)
}

type MockLister struct{ mock.Mock }

func (m *MockLister) RecentVideos(ctx context.Context, channelID string) ([]worker.ChannelVideo, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]worker.ChannelVideo), args.Error(1)
}

type MockGenerator struct{ mock.Mock }

func (m *MockGenerator) ImproveTitles(ctx context.Context, videos []job.Video) ([]job.ImprovedTitle, error) {
	args := m.Called(ctx, videos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]job.ImprovedTitle), args.Error(1)
}

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, to, subject, text string) (string, error) {
	args := m.Called(ctx, to, subject, text)
	return args.String(0), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

// recordingPublisher captures every publish for inspection.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Body  []byte
}

func (p *recordingPublisher) Publish(topic string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Body: body})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

func (p *recordingPublisher) last() publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
