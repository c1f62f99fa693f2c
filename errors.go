package emitter

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrTerminated       = errors.New("program exit")
	ErrRateLimit        = errors.New("rate limit exceeded")
)

// ErrUnrecoverableConnection reports a dial failure that retrying will not fix,
// such as the server rejecting the handshake with a client error.
type ErrUnrecoverableConnection struct {
	err error
	url url.URL
}

func (e ErrUnrecoverableConnection) Error() string {
	return fmt.Sprintf("unrecoverable connection error: %s to %s", e.err, e.url.String())
}

func (e ErrUnrecoverableConnection) Unwrap() error { return e.err }

// WrapErrorUnrecoverableConnection returns nil when err is nil.
func WrapErrorUnrecoverableConnection(err error, url url.URL) error {
	if err == nil {
		return nil
	}
	return &ErrUnrecoverableConnection{
		err: err,
		url: url,
	}
}

// IsUnrecoverable reports whether err, or any error it wraps, is an ErrUnrecoverableConnection.
func IsUnrecoverable(err error) bool {
	var target *ErrUnrecoverableConnection
	return errors.As(err, &target)
}
