package emitter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordedEmitter() (*EventEmitter[EventType, error], *eventRecorder) {
	events := NewEventEmitter[EventType, error]()
	rec := &eventRecorder{}
	events.OnAny(rec.record)
	return events, rec
}

func TestDirectConnectionHandlerLifecycle(t *testing.T) {
	var conns fakeConnections
	events, rec := newRecordedEmitter()
	client := &mockClient{}
	received := make(chan Message, 1)
	var gotClient Client

	h := NewDirectConnectionHandlerFactory(NoopLogger{}, conns.factory())(
		client,
		func(c Client, m Message) {
			gotClient = c
			received <- m
		},
		events,
	)

	require.NoError(t, h.Connect(context.Background()))
	assert.Equal(t, []EventType{EventConnect}, rec.Types())

	conn := conns.At(0)
	conn.deliver(NewDataMessage([]byte("hello")))

	select {
	case m := <-received:
		assert.Equal(t, "hello", string(m.Data()))
		assert.Same(t, client, gotClient)
	case <-time.After(time.Second):
		t.Fatal("message was not forwarded")
	}

	h.Send(NewDataMessage([]byte("out")))
	require.Len(t, conn.Written(), 1)
	assert.Equal(t, "out", string(conn.Written()[0].Data()))

	conn.fail(ErrConnectionClosed)

	select {
	case <-h.CloseChan():
	case <-time.After(time.Second):
		t.Fatal("handler did not close")
	}

	assert.ErrorIs(t, h.CloseErr(), ErrConnectionClosed)
	require.Eventually(t, func() bool { return rec.Count(EventClose) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []recordedEvent{
		{Type: EventConnect},
		{Type: EventClose, Reason: ErrConnectionClosed},
	}, rec.Events())
	client.AssertExpectations(t)
}

func TestDirectConnectionHandlerConnectError(t *testing.T) {
	conns := fakeConnections{openErrs: []error{ErrCannotConnect}}
	events, rec := newRecordedEmitter()

	h := NewDirectConnectionHandlerFactory(NoopLogger{}, conns.factory())(nil, func(Client, Message) {}, events)

	assert.ErrorIs(t, h.Connect(context.Background()), ErrCannotConnect)

	h.Close()
	assert.Empty(t, rec.Events())
	assert.ErrorIs(t, h.CloseErr(), ErrTerminated)
}

func TestDirectConnectionHandlerClosesWithContext(t *testing.T) {
	var conns fakeConnections
	events, rec := newRecordedEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	h := NewDirectConnectionHandlerFactory(NoopLogger{}, conns.factory())(nil, func(Client, Message) {}, events)
	require.NoError(t, h.Connect(ctx))

	cancel()

	select {
	case <-h.CloseChan():
	case <-time.After(time.Second):
		t.Fatal("handler did not close")
	}

	require.Eventually(t, func() bool { return rec.Count(EventClose) == 1 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, conns.At(0).CloseErr(), ErrTerminated)
}

func TestDirectConnectionHandlerCloseIsIdempotent(t *testing.T) {
	var conns fakeConnections
	events, rec := newRecordedEmitter()

	h := NewDirectConnectionHandlerFactory(NoopLogger{}, conns.factory())(nil, func(Client, Message) {}, events)
	require.NoError(t, h.Connect(context.Background()))

	h.Close()
	h.Close()

	assert.Equal(t, []EventType{EventConnect, EventClose}, rec.Types())
}
