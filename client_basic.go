package emitter

import (
	"context"
)

// basicClient is a client implementation with a single connection handler chain. It only forwards 'data'
// and 'binary' messages to the message handler, whereas 'ping', 'pong' or 'close' messages are passed
// down to the connection handlers for handling.
type basicClient struct {
	// connectionHandlerFactory is a factory for creating new connection handlers
	connectionHandlerFactory ConnectionHandlerFactory
	// connectionHandler is the active connection handler
	connectionHandler ConnectionHandler
	// messageHandler is a handler for processing incoming messages
	messageHandler MessageHandler
	// eventHandler, when set, observes every lifecycle event
	eventHandler EventHandler

	events  *EventEmitter[EventType, error]
	forward *WildcardListener[EventType, error]
}

func (b *basicClient) createConnectionHandler() {
	handlerWrapper := func(cli Client, m Message) {
		if m.Type().IsData() {
			b.messageHandler(cli, m)
		} else {
			b.connectionHandler.Recv(m)
		}
	}

	b.connectionHandler = b.connectionHandlerFactory(b, handlerWrapper, b.events)
}

func (b *basicClient) Open(ctx context.Context) error {
	b.createConnectionHandler()

	// Reopening replaces the forwarder, otherwise the event handler would see every event twice.
	b.detach()
	if b.eventHandler != nil {
		b.forward = b.events.OnAny(func(eventType EventType, reason error) {
			b.eventHandler(b, eventType, reason)
		})
	}

	if err := b.connectionHandler.Connect(ctx); err != nil {
		b.detach()
		return err
	}

	return nil
}

func (b *basicClient) Send(m Message) {
	if b.connectionHandler == nil {
		return
	}
	b.connectionHandler.Send(m)
}

// Close closes the connection. The event handler still observes the resulting EventClose;
// listeners registered through Events are left in place.
func (b *basicClient) Close() {
	if b.connectionHandler != nil {
		b.connectionHandler.Close()
	}
	b.detach()
}

func (b *basicClient) CloseChan() CloseChan {
	if b.connectionHandler == nil {
		return nil
	}
	return b.connectionHandler.CloseChan()
}

func (b *basicClient) Events() *EventEmitter[EventType, error] {
	return b.events
}

func (b *basicClient) detach() {
	if b.forward != nil {
		b.events.OffAny(b.forward)
		b.forward = nil
	}
}

func newBasicClient(
	connHandlerFactory ConnectionHandlerFactory,
	messageHandler MessageHandler,
	eventHandler EventHandler,
	opts ...Option,
) *basicClient {
	if messageHandler == nil {
		messageHandler = func(Client, Message) {}
	}

	return &basicClient{
		messageHandler:           messageHandler,
		eventHandler:             eventHandler,
		connectionHandlerFactory: connHandlerFactory,
		events:                   NewEventEmitter[EventType, error](opts...),
	}
}

// NewBasicClientFactory returns a factory of clients driving the handler chain built by connHandlerFactory.
// Options configure the lifecycle emitter of each client.
func NewBasicClientFactory(
	connHandlerFactory ConnectionHandlerFactory,
	messageHandler MessageHandler,
	eventHandler EventHandler,
	opts ...Option,
) ClientFactory {
	return func() Client {
		return newBasicClient(
			connHandlerFactory,
			messageHandler,
			eventHandler,
			opts...,
		)
	}
}
