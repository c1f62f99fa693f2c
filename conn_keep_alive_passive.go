package emitter

type (
	// PassiveKeepAliveHandler inspects inbound control messages and may answer them through ch.
	PassiveKeepAliveHandler func(ch ConnectionHandler, m Message)
)

// passiveKeepAliveConnectionHandler answers control messages to keep the connection open.
// Every message is still forwarded to the wrapped handler.
type passiveKeepAliveConnectionHandler struct {
	ConnectionHandler
	handler PassiveKeepAliveHandler
}

func (h *passiveKeepAliveConnectionHandler) Recv(m Message) {
	h.handler(h.ConnectionHandler, m)

	h.ConnectionHandler.Recv(m)
}

func newPassiveKeepAliveConnectionHandler(
	c ConnectionHandler,
	h PassiveKeepAliveHandler,
) *passiveKeepAliveConnectionHandler {
	return &passiveKeepAliveConnectionHandler{ConnectionHandler: c, handler: h}
}

func NewPassiveKeepAliveConnectionHandlerFactory(
	factory ConnectionHandlerFactory,
	handler PassiveKeepAliveHandler,
) ConnectionHandlerFactory {
	return func(
		client Client,
		msgHandler MessageHandler,
		emitter emitter[EventType, error],
	) ConnectionHandler {
		return newPassiveKeepAliveConnectionHandler(factory(client, msgHandler, emitter), handler)
	}
}

// KeepAliveHandlerReplyPingWithPong echoes every ping payload back in a pong.
func KeepAliveHandlerReplyPingWithPong(ch ConnectionHandler, m Message) {
	if m.Type().IsPing() {
		ch.Send(NewPongMessage(m.Data()))
	}
}
