package emitter

import (
	"context"
	"sync"
)

type mockConnectionHandler struct {
	ConnectFunc   func(ctx context.Context) error
	CloseFunc     func()
	SendFunc      func(m Message)
	RecvFunc      func(m Message)
	CloseChanFunc func() CloseChan
	CloseErrFunc  func() error
}

func (m *mockConnectionHandler) Connect(ctx context.Context) error {
	return m.ConnectFunc(ctx)
}

func (m *mockConnectionHandler) Close() {
	m.CloseFunc()
}

func (m *mockConnectionHandler) Send(msg Message) {
	m.SendFunc(msg)
}

func (m *mockConnectionHandler) Recv(msg Message) {
	m.RecvFunc(msg)
}

func (m *mockConnectionHandler) CloseChan() CloseChan {
	return m.CloseChanFunc()
}

func (m *mockConnectionHandler) CloseErr() error {
	return m.CloseErrFunc()
}

// fakeConnection is an in-memory Connection. Tests push inbound messages with deliver
// and inspect outbound ones through written.
type fakeConnection struct {
	openErr error
	recv    chan<- Message

	mu        sync.Mutex
	written   []Message
	closeErr  error
	closeC    CloseChan
	closeOnce sync.Once
}

func newFakeConnection(openErr error, recv chan<- Message) *fakeConnection {
	return &fakeConnection{openErr: openErr, recv: recv, closeC: make(CloseChan)}
}

func (f *fakeConnection) Open(context.Context) error { return f.openErr }

func (f *fakeConnection) Write(m Message) error {
	select {
	case <-f.closeC:
		return ErrConnectionClosed
	default:
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, m)
	return nil
}

func (f *fakeConnection) Written() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.written...)
}

func (f *fakeConnection) deliver(m Message) {
	f.recv <- m
}

// fail closes the connection as if the peer went away.
func (f *fakeConnection) fail(err error) {
	f.mu.Lock()
	if f.closeErr == nil {
		f.closeErr = err
	}
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.closeC) })
}

func (f *fakeConnection) Close() { f.fail(ErrTerminated) }

func (f *fakeConnection) CloseErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeErr
}

func (f *fakeConnection) CloseChan() CloseChan { return f.closeC }

// fakeConnections records every fakeConnection its factory builds.
type fakeConnections struct {
	mu       sync.Mutex
	conns    []*fakeConnection
	openErrs []error
}

func (fc *fakeConnections) factory() ConnectionFactory {
	return func(_ context.Context, recv chan<- Message) Connection {
		fc.mu.Lock()
		defer fc.mu.Unlock()

		var openErr error
		if len(fc.openErrs) > 0 {
			openErr, fc.openErrs = fc.openErrs[0], fc.openErrs[1:]
		}

		conn := newFakeConnection(openErr, recv)
		fc.conns = append(fc.conns, conn)
		return conn
	}
}

func (fc *fakeConnections) Len() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.conns)
}

func (fc *fakeConnections) At(i int) *fakeConnection {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.conns[i]
}

type recordedEvent struct {
	Type   EventType
	Reason error
}

// eventRecorder collects lifecycle events published from any goroutine.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) record(event EventType, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Type: event, Reason: reason})
}

func (r *eventRecorder) Events() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

func (r *eventRecorder) Count(event EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e.Type == event {
			n++
		}
	}
	return n
}

func (r *eventRecorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
