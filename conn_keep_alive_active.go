package emitter

import (
	"context"
	"sync"
	"time"
)

type KeepAliveMessageFactory func() Message

// activeKeepAliveConnectionHandler sends a keep-alive message every pingInterval
// for as long as the wrapped connection is up.
type activeKeepAliveConnectionHandler struct {
	ConnectionHandler
	pingInterval            time.Duration
	keepAliveMessageFactory KeepAliveMessageFactory
	logger                  Logger

	connectOnce sync.Once
	closeOnce   sync.Once
	closeC      chan struct{}
}

// Connect connects the wrapped handler and starts the keep-alive routine. Only the first call has effect.
func (h *activeKeepAliveConnectionHandler) Connect(ctx context.Context) (err error) {
	h.connectOnce.Do(func() {
		if err = h.ConnectionHandler.Connect(ctx); err != nil {
			return
		}

		go h.run(ctx)
	})

	return
}

func (h *activeKeepAliveConnectionHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.closeC)
		h.ConnectionHandler.Close()
	})
}

func (h *activeKeepAliveConnectionHandler) run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	innerClosed := h.ConnectionHandler.CloseChan()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closeC:
			return
		case <-innerClosed:
			return
		case <-ticker.C:
			h.logger.Debugln("sending keep-alive")
			h.ConnectionHandler.Send(h.keepAliveMessageFactory())
		}
	}
}

func newActiveKeepAliveConnectionHandler(
	logger Logger,
	ch ConnectionHandler,
	interval time.Duration,
	keepAliveMessageFactory KeepAliveMessageFactory,
) *activeKeepAliveConnectionHandler {
	return &activeKeepAliveConnectionHandler{
		ConnectionHandler:       ch,
		logger:                  logger,
		pingInterval:            interval,
		keepAliveMessageFactory: keepAliveMessageFactory,
		closeC:                  make(chan struct{}),
	}
}

// NewActiveKeepAliveConnectionHandlerFactory wraps the handlers built by factory so they
// send the message built by keepAliveMessageFactory every interval.
func NewActiveKeepAliveConnectionHandlerFactory(
	logger Logger,
	factory ConnectionHandlerFactory,
	interval time.Duration,
	keepAliveMessageFactory KeepAliveMessageFactory,
) ConnectionHandlerFactory {
	return func(client Client, handler MessageHandler, emitter emitter[EventType, error]) ConnectionHandler {
		return newActiveKeepAliveConnectionHandler(
			logger.WithField("type", "conn_handler_keep_alive_active"),
			factory(client, handler, emitter),
			interval,
			keepAliveMessageFactory,
		)
	}
}

// NewKeepAliveMessageFactory builds messages of type mt with the content returned by contentFactory.
func NewKeepAliveMessageFactory(
	mt MessageType,
	contentFactory func() []byte,
) KeepAliveMessageFactory {
	return func() Message {
		return NewMessage(mt, contentFactory())
	}
}
