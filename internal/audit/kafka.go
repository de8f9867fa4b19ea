package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	id "talentgate/pkg/domain"
)

// KafkaPublisher decorates a Store: every appended event is also produced to
// a Kafka topic for downstream compliance consumers. The wrapped store stays
// the read path; Kafka delivery is asynchronous and logged on failure.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	next   Store
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, next Store, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	// 1 partition is enough: audit consumers want total order.
	resp, err := adm.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", resp.Err)
	}

	return &KafkaPublisher{client: client, topic: topic, next: next, logger: logger}, nil
}

func (p *KafkaPublisher) Append(ctx context.Context, event Event) error {
	if err := p.next.Append(ctx, event); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.PersonID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && p.logger != nil {
			p.logger.Warn("failed to publish audit event",
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}

func (p *KafkaPublisher) ListByPerson(ctx context.Context, personID id.PersonID) ([]Event, error) {
	return p.next.ListByPerson(ctx, personID)
}

// Close flushes pending records and releases the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return err
	}
	p.client.Close()
	return nil
}
