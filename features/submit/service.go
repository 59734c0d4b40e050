package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"titledoctor/features/job"
	"titledoctor/internal/config"
	"titledoctor/internal/middleware"
	"titledoctor/internal/worker"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// Service creates the job record and kicks off the pipeline. Exactly
// one record and one publish per accepted submission; duplicate
// submissions get independent jobs.
type Service struct {
	store job.Store
	pub   EventPublisher
}

func NewService(store job.Store, pub EventPublisher) *Service {
	return &Service{store: store, pub: pub}
}

// Submit stores a queued job and publishes the submitted event. Input
// is already validated by the handler.
func (s *Service) Submit(ctx context.Context, channel, email string) (*job.Job, error) {
	j := job.New(channel, email)

	if err := s.store.Put(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to store job: %w", err)
	}

	slog.InfoContext(ctx, "job created", "job_id", j.ID, "channel", channel)

	payload := worker.SubmittedPayload{
		JobID:         j.ID,
		Channel:       channel,
		Email:         email,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(config.TopicSubmitted, body); err != nil {
		return nil, fmt.Errorf("failed to publish submission: %w", err)
	}

	return j, nil
}
