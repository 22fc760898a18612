package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// ActivityLogged is published after an activity record is stored.
type ActivityLogged struct {
	EventID      string    `json:"eventId"`
	RecordID     uint64    `json:"recordId"`
	UserUID      string    `json:"userUid"`
	Category     string    `json:"category"`
	ActivityType string    `json:"activityType"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	CarbonKg     float64   `json:"carbonKg"`
	LoggedAt     time.Time `json:"loggedAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev ActivityLogged) error
	Close() error
}

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by user uid so one user's events stay ordered.
type KafkaPublisher struct {
	w writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev ActivityLogged) error {
	msg, err := buildMessage(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func buildMessage(ev ActivityLogged) (kafka.Message, error) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.UserUID),
		Value: body,
		Time:  ev.LoggedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity.logged")},
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
	}, nil
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, ActivityLogged) error { return nil }
func (Nop) Close() error                                  { return nil }

// New returns a Kafka publisher, or Nop when brokers is empty.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(brokers, topic)
}
