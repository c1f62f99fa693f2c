package emitter

import (
	"context"
)

type (
	// Connection is a single network connection. Inbound messages are pushed to the
	// channel given to its ConnectionFactory.
	Connection interface {
		Write(m Message) error
		Open(ctx context.Context) error
		Close()
		CloseErr() error
		CloseChan() CloseChan
	}

	ConnectionFactory func(ctx context.Context, recvChan chan<- Message) Connection
)
