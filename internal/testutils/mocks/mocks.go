package mocks

import (
	"context"
	"sync"
	"time"
)

// Message is one published message captured by MockMessageQueue.
type Message struct {
	Topic string
	Body  []byte
}

// MockMessageQueue is an in-memory message queue for testing
type MockMessageQueue struct {
	mu           sync.Mutex
	messages     []Message
	err          error
	closed       bool
	publishDelay time.Duration
	publishFunc  func(topic string, body []byte) error
}

// NewMockMessageQueue creates a new mock message queue
func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{}
}

// SetError sets the error that Publish should return
func (m *MockMessageQueue) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetPublishFunc sets a custom publish function for testing
func (m *MockMessageQueue) SetPublishFunc(fn func(topic string, body []byte) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishFunc = fn
}

// SetPublishDelay simulates broker latency
func (m *MockMessageQueue) SetPublishDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishDelay = d
}

// Publish records the message unless an error is configured
func (m *MockMessageQueue) Publish(ctx context.Context, topic string, body []byte) error {
	m.mu.Lock()
	delay, fn, err := m.publishDelay, m.publishFunc, m.err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fn != nil {
		return fn(topic, body)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{Topic: topic, Body: append([]byte(nil), body...)})
	return nil
}

// GetMessages returns the messages published to topic, or all messages if topic is empty
func (m *MockMessageQueue) GetMessages(topic string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Message
	for _, msg := range m.messages {
		if topic == "" || msg.Topic == topic {
			out = append(out, msg)
		}
	}
	return out
}

// Reset clears all data and resets the mock
func (m *MockMessageQueue) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.err = nil
	m.closed = false
	m.publishDelay = 0
	m.publishFunc = nil
}

// Close marks the queue closed
func (m *MockMessageQueue) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed returns whether Close was called
func (m *MockMessageQueue) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
