package bus

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nsqio/go-nsq"
)

// channelName is the shared NSQ channel for pipeline consumers. One
// channel per topic means each event is handled exactly once per stage.
const channelName = "pipeline"

// NSQBus runs the pipeline over nsqd. Publishes go through a single
// producer; Subscribe creates one consumer per topic connected via
// nsqlookupd.
type NSQBus struct {
	producer  *nsq.Producer
	lookupd   string
	consumers []*nsq.Consumer
}

func NewNSQBus(nsqdHost, lookupd string) (*NSQBus, error) {
	cfg := nsq.NewConfig()
	producer, err := nsq.NewProducer(nsqdHost, cfg)
	if err != nil {
		return nil, fmt.Errorf("nsq producer error: %w", err)
	}
	return &NSQBus{producer: producer, lookupd: lookupd}, nil
}

func (b *NSQBus) Publish(topic string, body []byte) error {
	return b.producer.Publish(topic, body)
}

func (b *NSQBus) Subscribe(topic string, h Handler) error {
	cfg := nsq.NewConfig()
	// Single in-flight message per topic keeps per-job delivery
	// sequential even under redelivery.
	cfg.MaxInFlight = 1

	consumer, err := nsq.NewConsumer(topic, channelName, cfg)
	if err != nil {
		return fmt.Errorf("nsq consumer error for %s: %w", topic, err)
	}
	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		return h(m.Body)
	}))
	if err := consumer.ConnectToNSQLookupd(b.lookupd); err != nil {
		return fmt.Errorf("nsqlookupd connect error for %s: %w", topic, err)
	}

	b.consumers = append(b.consumers, consumer)
	slog.Info("subscribed", "topic", topic, "channel", channelName)
	return nil
}

func (b *NSQBus) Stop() {
	for _, c := range b.consumers {
		c.Stop()
	}
	b.producer.Stop()
}

// PreCreateTopics hits the nsqd HTTP API so consumers querying lookupd
// don't 404 before the first publish. NSQ creates topics lazily
// otherwise.
func PreCreateTopics(nsqdHTTP string, topics []string) {
	create := func(topic string) {
		url := fmt.Sprintf("http://%s/topic/create?topic=%s", nsqdHTTP, topic)
		resp, err := http.Post(url, "application/json", nil) // #nosec G107 -- URL is built from internal NSQ config, not user input
		if err != nil {
			slog.Warn("failed to create NSQ topic", "topic", topic, "error", err)
			return
		}
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close NSQ topic creation response body", "error", closeErr)
		}
	}

	go func() {
		time.Sleep(2 * time.Second)
		for _, t := range topics {
			create(t)
		}
	}()
}
