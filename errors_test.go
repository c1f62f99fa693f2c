package emitter

import (
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapErrorUnrecoverableConnection(t *testing.T) {
	u := url.URL{Scheme: "ws", Host: "localhost:1234", Path: "/stream"}

	assert.NoError(t, WrapErrorUnrecoverableConnection(nil, u))

	err := WrapErrorUnrecoverableConnection(ErrCannotConnect, u)
	assert.EqualError(t, err, "unrecoverable connection error: connection cannot be established to ws://localhost:1234/stream")
	assert.ErrorIs(t, err, ErrCannotConnect)
	assert.True(t, IsUnrecoverable(errors.Wrap(err, "dial")))
	assert.False(t, IsUnrecoverable(ErrCannotConnect))
}
