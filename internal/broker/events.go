package appkafka

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
	EventPostCreated    = "post.created"
)

// Event is one activity record published for downstream consumers.
type Event struct {
	Type       string    `json:"type"`
	ActorID    uint      `json:"actor_id"`
	TargetID   uint      `json:"target_id,omitempty"`
	PostID     uint      `json:"post_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher writes activity events. A Publisher without a writer drops events,
// which is how the application runs when no broker is configured.
type Publisher struct {
	writer KafkaWriter
}

func NewPublisher(w KafkaWriter) *Publisher {
	return &Publisher{writer: w}
}

// Enabled reports whether events reach a broker.
func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish encodes ev and writes it keyed by actor, so one actor's events stay ordered.
func (p *Publisher) Publish(ev Event) error {
	if !p.Enabled() {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.ActorID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	})
}
