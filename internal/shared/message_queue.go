package shared

import "context"

// MessageQueue is the transport behind the dashboard feed.
type MessageQueue interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Close() error
}

// Handler processes one consumed message. A nil error acknowledges it.
type Handler func(topic string, body []byte, id string) error
