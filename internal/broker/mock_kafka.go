package appkafka

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MockKafka records written messages in memory.
type MockKafka struct {
	mu              sync.Mutex
	WrittenMessages []kafka.Message // stores messages written via WriteMessages
	ShouldFail      bool            // flag to simulate failures during write operations
	Closed          bool
}

func (m *MockKafka) WriteMessages(messages ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("mock kafka write failed")
	}
	m.WrittenMessages = append(m.WrittenMessages, messages...)
	return nil
}

// Events decodes every written message.
func (m *MockKafka) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]Event, 0, len(m.WrittenMessages))
	for _, msg := range m.WrittenMessages {
		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err == nil {
			events = append(events, ev)
		}
	}
	return events
}

func (m *MockKafka) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// MockKafkaFail always fails.
type MockKafkaFail struct{}

func (m *MockKafkaFail) WriteMessages(messages ...kafka.Message) error {
	return errors.New("mock kafka write failed")
}

func (m *MockKafkaFail) Close() error { return nil }
