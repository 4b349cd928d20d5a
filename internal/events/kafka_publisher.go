package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaClickPublisher publishes ClickRecorded events keyed by link id.
// Publishing is best-effort: the click counter on the link document is the
// source of truth, the event stream only feeds the daily aggregates.
type KafkaClickPublisher struct {
	writer *kafka.Writer
}

func NewKafkaClickPublisher(brokers []string, topic string) *KafkaClickPublisher {
	return &KafkaClickPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaClickPublisher) PublishClick(ctx context.Context, linkID string, at time.Time) error {
	ev := ClickRecorded{
		EventID:    uuid.New().String(),
		LinkID:     linkID,
		OccurredAt: at.UTC().Format(time.RFC3339Nano),
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(linkID),
		Value: value,
		Time:  at.UTC(),
	})
}

func (p *KafkaClickPublisher) Close() error {
	return p.writer.Close()
}
