package emitter

import (
	"context"
)

// EventType names the connection lifecycle events a Client publishes.
type EventType string

const (
	// EventConnect fires every time a connection is established. Its payload is nil.
	EventConnect EventType = "connect"
	// EventClose fires when a connection goes away. Its payload is the close reason.
	EventClose EventType = "close"
	// EventReconnect fires after a lost connection has been replaced. Its payload is
	// the reason the previous one was lost.
	EventReconnect EventType = "reconnect"
)

type (
	// Client is the interface that defines the behavior of a client. This includes opening and closing connections,
	// sending messages, and publishing connection lifecycle events.
	Client interface {
		// Open establishes a connection with the server
		Open(ctx context.Context) error
		// Send sends a message to the server
		Send(m Message)
		// Close closes the connection with the server
		Close()
		// CloseChan returns a channel that signals when the connection is closed
		CloseChan() CloseChan
		// Events returns the emitter lifecycle events are published on
		Events() *EventEmitter[EventType, error]
	}

	CloseChan chan struct{}

	MessageHandler func(Client, Message)

	// EventHandler observes every lifecycle event of a client.
	EventHandler func(c Client, event EventType, reason error)

	ClientFactory func() Client
)
