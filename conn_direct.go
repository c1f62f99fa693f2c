package emitter

import (
	"context"
	"sync"
)

// directConnectionHandler owns a single Connection. It forwards inbound messages to the
// message handler and publishes EventConnect and EventClose for it.
type directConnectionHandler struct {
	client      Client
	emitter     emitter[EventType, error]
	handler     MessageHandler
	logger      Logger
	connFactory ConnectionFactory
	conn        Connection
	recv        chan Message
	closeC      CloseChan
	closeOnce   sync.Once
}

func newDirectConnectionHandler(
	logger Logger,
	client Client,
	handler MessageHandler,
	emitter emitter[EventType, error],
	connFactory ConnectionFactory,
) *directConnectionHandler {
	return &directConnectionHandler{
		logger:      logger.WithField("type", "conn_handler_direct"),
		client:      client,
		handler:     handler,
		emitter:     emitter,
		connFactory: connFactory,
		recv:        make(chan Message, 32),
		closeC:      make(CloseChan),
	}
}

// NewDirectConnectionHandlerFactory returns a factory of handlers serving one connection each,
// built by connFactory. It is the innermost link of a handler chain.
func NewDirectConnectionHandlerFactory(logger Logger, connFactory ConnectionFactory) ConnectionHandlerFactory {
	return func(client Client, handler MessageHandler, emitter emitter[EventType, error]) ConnectionHandler {
		return newDirectConnectionHandler(logger, client, handler, emitter, connFactory)
	}
}

func (h *directConnectionHandler) Connect(ctx context.Context) error {
	h.conn = h.connFactory(ctx, h.recv)

	if err := h.conn.Open(ctx); err != nil {
		h.conn.Close()
		// Never connected, so there is no close to publish.
		h.closeOnce.Do(func() { close(h.closeC) })
		return err
	}

	h.emitter.Emit(EventConnect, nil)

	go h.run(ctx)

	return nil
}

func (h *directConnectionHandler) run(ctx context.Context) {
	connClosed := h.conn.CloseChan()

	for {
		select {
		case <-ctx.Done():
			h.safeClose()
			return
		case <-h.closeC:
			return
		case <-connClosed:
			h.logger.Infof("connection closed due to %v", h.conn.CloseErr())
			h.safeClose()
			return
		case m := <-h.recv:
			h.handler(h.client, m)
		}
	}
}

// Recv has nothing to answer at this level: control messages are dealt with by wrapping handlers.
func (h *directConnectionHandler) Recv(m Message) {
	h.logger.Debugf("ignoring %s", m)
}

func (h *directConnectionHandler) Send(m Message) {
	if h.conn == nil {
		h.logger.Warnf("dropping %s, not connected", m)
		return
	}

	if err := h.conn.Write(m); err != nil {
		h.logger.Warnf("cannot send %s: %s", m, err)
	}
}

func (h *directConnectionHandler) CloseChan() CloseChan {
	return h.closeC
}

func (h *directConnectionHandler) CloseErr() error {
	if h.conn == nil {
		return nil
	}
	return h.conn.CloseErr()
}

func (h *directConnectionHandler) Close() {
	h.safeClose()
}

func (h *directConnectionHandler) safeClose() {
	h.closeOnce.Do(func() {
		close(h.closeC)
		if h.conn == nil {
			return
		}
		h.conn.Close()
		h.emitter.Emit(EventClose, h.conn.CloseErr())
	})
}
