package emitter

import "context"

type (
	emitter[K comparable, V any] interface {
		Emit(K, V)
	}

	// ConnectionHandler defines the interactions with a connection.
	ConnectionHandler interface {
		// Recv is called when a control message from the server is received.
		Recv(m Message)

		// Send is called when a message needs to be sent to the server.
		Send(m Message)

		// Connect establishes a connection to the server. It returns once the connection
		// is up; the connection is then served in the background.
		Connect(ctx context.Context) error

		// CloseChan returns a channel that will be closed when the connection is closed.
		CloseChan() CloseChan

		// CloseErr returns an error that explains why the connection was closed.
		// If the connection closed normally, CloseErr should return nil.
		CloseErr() error

		// Close closes the connection and releases its resources.
		Close()
	}

	// ConnectionHandlerFactory builds a ConnectionHandler publishing its lifecycle on the given emitter.
	ConnectionHandlerFactory func(Client, MessageHandler, emitter[EventType, error]) ConnectionHandler
)
