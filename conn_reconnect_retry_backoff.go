package emitter

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// rateLimitBackoff is the default minimum wait after the server refused us for rate limiting.
const rateLimitBackoff = 5 * time.Second

// BackoffCalculator returns how long to wait before the given reconnection attempt.
type BackoffCalculator func(attempts int) time.Duration

// backoffConnectionHandler keeps a connection alive by replacing its inner handler
// whenever it closes, waiting longer after each failure in a row.
type backoffConnectionHandler struct {
	client                Client
	emitter               emitter[EventType, error]
	logger                Logger
	connHandlerFactory    ConnectionHandlerFactory
	calculator            BackoffCalculator
	handler               MessageHandler
	connDurationThreshold time.Duration
	rateLimitBackoff      time.Duration

	mu          sync.Mutex
	inner       ConnectionHandler
	closeReason error

	closeC    CloseChan
	closeOnce sync.Once
	send      chan Message
	recv      chan Message
}

// newConnHandler connects a fresh inner handler, retrying until it succeeds, the error
// is unrecoverable, or the handler is shut down.
func (b *backoffConnectionHandler) newConnHandler(ctx context.Context) (ConnectionHandler, error) {
	for attempts := 1; ; attempts++ {
		ch := b.connHandlerFactory(b.client, b.handler, b.emitter)

		err := ch.Connect(ctx)
		if err == nil {
			return ch, nil
		}

		if IsUnrecoverable(err) {
			b.logger.Errorf("giving up connecting: %s", err)
			return nil, err
		}

		ttw := b.calculator(attempts)
		if errors.Is(err, ErrRateLimit) {
			ttw = max(ttw, b.rateLimitBackoff)
		}

		b.logger.Infof("cannot connect due to %s, waiting %s", err, ttw)

		if !b.wait(ctx, ttw) {
			return nil, ErrTerminated
		}
	}
}

func (b *backoffConnectionHandler) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-b.closeC:
		return false
	case <-timer.C:
		return true
	}
}

func (b *backoffConnectionHandler) current() ConnectionHandler {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.inner
}

func (b *backoffConnectionHandler) run(ctx context.Context) {
	var (
		inner    = b.current()
		attempts = 0
		then     = time.Now()
	)

	for {
		select {
		case <-ctx.Done():
			b.shutdown(ErrTerminated)
			return
		case <-b.closeC:
			return
		case msg := <-b.recv:
			inner.Recv(msg)
		case msg := <-b.send:
			inner.Send(msg)
		case <-inner.CloseChan():
			reason := inner.CloseErr()

			// A connection that stayed up long enough is considered healthy, so
			// its loss does not count as a failure.
			if time.Since(then) > b.connDurationThreshold {
				attempts = 0
			} else {
				attempts++
			}

			ttw := b.calculator(attempts)
			b.logger.Infof("retrying to connect after %s due to %v", ttw, reason)

			if !b.wait(ctx, ttw) {
				b.shutdown(ErrTerminated)
				return
			}

			next, err := b.newConnHandler(ctx)
			if err != nil {
				b.shutdown(err)
				return
			}

			b.mu.Lock()
			select {
			case <-b.closeC:
				b.mu.Unlock()
				next.Close()
				return
			default:
			}
			b.inner = next
			b.mu.Unlock()

			inner = next
			then = time.Now()

			b.emitter.Emit(EventReconnect, reason)
		}
	}
}

// Connect opens the first connection synchronously, then keeps it alive in the background.
func (b *backoffConnectionHandler) Connect(ctx context.Context) error {
	inner, err := b.newConnHandler(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.inner = inner
	b.mu.Unlock()

	go b.run(ctx)

	return nil
}

func (b *backoffConnectionHandler) Recv(m Message) {
	select {
	case b.recv <- m:
	case <-b.closeC:
	}
}

func (b *backoffConnectionHandler) Send(m Message) {
	select {
	case b.send <- m:
	case <-b.closeC:
	}
}

func (b *backoffConnectionHandler) Close() {
	b.shutdown(ErrTerminated)
}

func (b *backoffConnectionHandler) shutdown(reason error) {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closeReason = reason
		close(b.closeC)
		inner := b.inner
		b.mu.Unlock()

		// Closing the inner handler publishes EventClose, whose listeners may call back into b.
		if inner != nil {
			inner.Close()
		}
	})
}

func (b *backoffConnectionHandler) CloseChan() CloseChan {
	return b.closeC
}

func (b *backoffConnectionHandler) CloseErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closeReason
}

func newBackoffConnectionHandler(
	logger Logger,
	client Client,
	emitter emitter[EventType, error],
	connHandlerFactory ConnectionHandlerFactory,
	handler MessageHandler,
	calculator BackoffCalculator,
	connDurationThreshold time.Duration,
) *backoffConnectionHandler {
	return &backoffConnectionHandler{
		logger: logger.WithField(
			"type", "conn_handler_reconnect_exp_backoff",
		),
		client:                client,
		emitter:               emitter,
		handler:               handler,
		connHandlerFactory:    connHandlerFactory,
		calculator:            calculator,
		connDurationThreshold: connDurationThreshold,
		rateLimitBackoff:      rateLimitBackoff,
		send:                  make(chan Message, 32),
		recv:                  make(chan Message, 32),
		closeC:                make(CloseChan),
	}
}

func NewBackoffConnectionHandlerFactory(
	logger Logger,
	connHandlerFactory ConnectionHandlerFactory,
	calculator BackoffCalculator,
	connDurationThreshold time.Duration,
) ConnectionHandlerFactory {
	return func(client Client, handler MessageHandler, emitter emitter[EventType, error]) ConnectionHandler {
		return newBackoffConnectionHandler(
			logger,
			client,
			emitter,
			connHandlerFactory,
			handler,
			calculator,
			connDurationThreshold,
		)
	}
}

// ExponentialBackoff returns (2^attempts - 1) / 2: 0, 0.5, 1.5, 3.5, 7.5...
func ExponentialBackoff(attempts int) float64 {
	return (math.Pow(2.0, float64(attempts)) - 1) / 2
}

func ExponentialBackoffSeconds(attempts int) time.Duration {
	return time.Duration(ExponentialBackoff(attempts) * float64(time.Second))
}

// CappedBackoff limits the waits returned by calc to limit.
func CappedBackoff(calc BackoffCalculator, limit time.Duration) BackoffCalculator {
	return func(attempts int) time.Duration {
		return min(calc(attempts), limit)
	}
}
