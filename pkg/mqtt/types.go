package mqtt

import (
	"context"
)

// MessageHandler processes one received message. It runs on its own goroutine.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Publisher is the subset of Client needed to send messages.
type Publisher interface {
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error
}

// Subscriber is the subset of Client needed to receive messages.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error
	Unsubscribe(ctx context.Context, topic string) error
}

// Client abstracts the underlying paho connection manager.
type Client interface {
	Publisher
	Subscriber

	// Start initiates the connection to the broker.
	// It is non-blocking and returns immediately. Use AwaitConnection to wait.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error

	// IsConnected reports whether the last connection attempt succeeded and has
	// not been dropped since.
	IsConnected() bool
}

var _ Client = (*pahoClient)(nil)
