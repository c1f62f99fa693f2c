package emitter

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
)

const defaultWriteTimeout = time.Second

type (
	openConnectionParamsRepo interface {
		Get(ctx context.Context) (OpenConnectionParams, error)
	}

	// ErrAdapter turns the outcome of a dial into the error reported by Open.
	ErrAdapter func(*websocket.Conn, *http.Response, error) error

	ErrorAdapters struct {
		OnDial ErrAdapter
	}

	// WsConnection is a Connection over a websocket.
	WsConnection struct {
		errAdapters              ErrorAdapters
		openConnectionParamsRepo openConnectionParamsRepo
		logger                   Logger
		dialer                   *websocket.Dialer
		writeTimeout             time.Duration
		conn                     *websocket.Conn
		closeChan                CloseChan
		closeOnce                sync.Once
		closeReason              error
		closeReasonMu            sync.Mutex
		recv                     chan<- Message // messages received over the wire
		send                     chan Message   // messages to be sent over the wire
	}
)

func NewWebsocketConnection(
	dialer *websocket.Dialer,
	openParamsRepo OpenConnectionParamsRepo,
	logger Logger,
	recvChan chan<- Message,
	errorAdapters ErrorAdapters,
) *WsConnection {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &WsConnection{
		errAdapters:              errorAdapters,
		dialer:                   dialer,
		openConnectionParamsRepo: openParamsRepo,
		writeTimeout:             defaultWriteTimeout,
		recv:                     recvChan,
		send:                     make(chan Message),
		closeChan:                make(CloseChan),
		logger:                   logger.WithField("net", "ws_connection"),
	}
}

func NewWebsocketFactory(
	logger Logger,
	dialer *websocket.Dialer,
	openConnectionParamsRepo OpenConnectionParamsRepo,
	errorAdapters ErrorAdapters,
) ConnectionFactory {
	return func(_ context.Context, recvChan chan<- Message) Connection {
		return NewWebsocketConnection(
			dialer,
			openConnectionParamsRepo,
			logger,
			recvChan,
			errorAdapters,
		)
	}
}

// Write queues a message to be sent over the websocket. It fails once the connection is closed.
func (w *WsConnection) Write(m Message) error {
	select {
	case w.send <- m:
		return nil
	case <-w.closeChan:
		return ErrConnectionClosed
	}
}

// Close terminates the websocket connection. The close reason becomes ErrTerminated
// unless the connection had already failed.
func (w *WsConnection) Close() {
	w.setCloseReason(ErrTerminated)
	w.safeClose()
}

// Open dials the peer. It returns once the handshake is done; reads and writes are
// served by background goroutines until the connection closes or ctx is done.
func (w *WsConnection) Open(ctx context.Context) error {
	p, err := w.openConnectionParamsRepo.Get(ctx)
	if err != nil {
		w.logger.Errorf("cannot get connection params due to %s", err)
		return errors.Wrap(ErrCannotConnect, err.Error())
	}

	conn, resp, err := w.dialer.DialContext(ctx, p.URL.String(), p.Header)
	if err = w.handleDialError(p.URL, conn, resp, err); err != nil {
		w.logger.Errorf("connection err to %s: %s", p.URL.String(), err)
		return err
	}

	w.logger.Debugf("success opening connection to %s", p.URL.String())

	w.conn = conn

	// Control frames are surfaced as messages so connection handlers decide how to answer them.
	conn.SetPingHandler(func(appData string) error {
		w.logger.Debugln("<= [PING]")
		w.deliver(NewPingMessage([]byte(appData)))
		return nil
	})

	conn.SetPongHandler(func(appData string) error {
		w.logger.Debugln("<= [PONG]")
		w.deliver(NewPongMessage([]byte(appData)))
		return nil
	})

	conn.SetCloseHandler(func(code int, text string) error {
		w.logger.Debugln("<= [CLOSE]")
		w.deliver(NewCloseMessage(code, []byte(text)))
		return nil
	})

	go w.read()
	go w.write(ctx)

	return nil
}

// CloseChan returns a channel that will be closed when the websocket connection is closed.
func (w *WsConnection) CloseChan() CloseChan {
	return w.closeChan
}

// CloseErr returns an error that explains why the websocket connection was closed.
func (w *WsConnection) CloseErr() error {
	w.closeReasonMu.Lock()
	defer w.closeReasonMu.Unlock()

	return w.closeReason
}

func (w *WsConnection) deliver(m Message) {
	select {
	case w.recv <- m:
	case <-w.closeChan:
	}
}

func (w *WsConnection) read() {
	defer w.safeClose()

	for {
		messageType, bts, err := w.conn.ReadMessage()
		if err != nil {
			w.setCloseReason(errors.Wrap(ErrConnectionClosed, "websocket read: "+err.Error()))
			return
		}

		// ReadMessage only yields data frames, control frames go through the handlers set in Open.
		switch messageType {
		case websocket.BinaryMessage:
			w.logger.Debugln("<= [BIN]")
			w.deliver(NewBinaryMessage(bts))
		default:
			w.logger.Debugf("<= [DATA] %s", bts)
			w.deliver(NewDataMessage(bts))
		}
	}
}

func (w *WsConnection) write(ctx context.Context) {
	defer w.safeClose()

	for {
		select {
		case <-w.closeChan:
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			return
		case msg := <-w.send:
			if err := w.writeMessage(msg); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					w.setCloseReason(ErrConnectionClosed)
				} else {
					w.setCloseReason(errors.Wrap(ErrConnectionClosed, "websocket write: "+err.Error()))
				}
				return
			}
		}
	}
}

func (w *WsConnection) writeMessage(msg Message) error {
	deadline := time.Now().Add(w.writeTimeout)

	switch msg.Type() {
	case PingMessage:
		w.logger.Debugln("=> [PING]")
		return w.conn.WriteControl(websocket.PingMessage, msg.Data(), deadline)
	case PongMessage:
		w.logger.Debugln("=> [PONG]")
		return w.conn.WriteControl(websocket.PongMessage, msg.Data(), deadline)
	case CloseError:
		code := websocket.CloseNormalClosure
		if em, ok := msg.(ErrorMessage); ok {
			code = em.Code()
		}
		w.logger.Debugln("=> [CLOSE]")
		return w.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, string(msg.Data())), deadline)
	case BinaryMessage:
		w.logger.Debugln("=> [BIN]")
		_ = w.conn.SetWriteDeadline(deadline)
		return w.conn.WriteMessage(websocket.BinaryMessage, msg.Data())
	default:
		w.logger.Debugf("=> [DATA] %s", msg.Data())
		_ = w.conn.SetWriteDeadline(deadline)
		return w.conn.WriteMessage(websocket.TextMessage, msg.Data())
	}
}

func (w *WsConnection) safeClose() {
	w.closeOnce.Do(w.close)
}

func (w *WsConnection) close() {
	close(w.closeChan)
	if w.conn != nil {
		_ = w.conn.Close()
	}
}

func (w *WsConnection) setCloseReason(err error) {
	w.closeReasonMu.Lock()
	defer w.closeReasonMu.Unlock()

	if w.closeReason == nil {
		w.closeReason = err
	}
}

func (w *WsConnection) handleDialError(u url.URL, conn *websocket.Conn, resp *http.Response, err error) error {
	if w.errAdapters.OnDial != nil {
		return w.errAdapters.OnDial(conn, resp, err)
	}

	if err == nil {
		return nil
	}

	// 1. Check HTTP errors first
	if resp != nil {
		var msg string
		if resp.Body != nil {
			if bts, readErr := io.ReadAll(resp.Body); readErr == nil {
				msg = string(bts)
			}
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return errors.Wrap(ErrRateLimit, msg)
		case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusRequestTimeout:
			return WrapErrorUnrecoverableConnection(
				errors.Wrapf(ErrCannotConnect, "handshake status %d: %s", resp.StatusCode, msg),
				u,
			)
		}
	}

	// 2. Network errors
	return errors.Wrap(ErrCannotConnect, err.Error())
}
