package emitter

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Open(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockClient) Send(msg Message) {
	m.Called(msg)
}

func (m *mockClient) Close() {
	m.Called()
}

func (m *mockClient) CloseChan() CloseChan {
	args := m.Called()
	return args.Get(0).(CloseChan)
}

func (m *mockClient) Events() *EventEmitter[EventType, error] {
	args := m.Called()
	return args.Get(0).(*EventEmitter[EventType, error])
}
