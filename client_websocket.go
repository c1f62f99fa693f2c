package emitter

import (
	"net/http"
	"net/url"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid client config")

const (
	defaultReconnectThreshold = time.Minute
	defaultMaxBackoff         = 30 * time.Second
)

// ClientConfig describes a websocket client. Zero values pick sensible defaults.
type ClientConfig struct {
	// URL and Header are dialed on every connection, unless Params is set.
	URL    url.URL
	Header http.Header
	// Params resolves the dial parameters on every connection.
	Params OpenConnectionParamsGetter

	// Dialer defaults to websocket.DefaultDialer.
	Dialer        *websocket.Dialer
	ErrorAdapters ErrorAdapters

	// Logger defaults to NoopLogger.
	Logger Logger

	// PingInterval enables sending pings every interval. Pings from the server are always answered.
	PingInterval time.Duration

	// Reconnect replaces lost connections, waiting as told by Backoff between attempts.
	Reconnect bool
	// Backoff defaults to ExponentialBackoffSeconds capped to 30s.
	Backoff BackoffCalculator
	// ReconnectThreshold is how long a connection must last for its loss not to count
	// as a failure. Defaults to one minute.
	ReconnectThreshold time.Duration

	MessageHandler MessageHandler
	EventHandler   EventHandler

	// EmitterOptions configure the lifecycle emitter of each client.
	EmitterOptions []Option
}

// Validate reports whether the config can produce a client.
func (c ClientConfig) Validate() error {
	if c.Params == nil && c.URL.Host == "" {
		return errors.Wrap(ErrInvalidConfig, "either URL or Params must be set")
	}
	if c.Params == nil && c.URL.Scheme != "ws" && c.URL.Scheme != "wss" {
		return errors.Wrapf(ErrInvalidConfig, "unsupported scheme %q", c.URL.Scheme)
	}
	if c.PingInterval < 0 {
		return errors.Wrap(ErrInvalidConfig, "negative ping interval")
	}
	if c.ReconnectThreshold < 0 {
		return errors.Wrap(ErrInvalidConfig, "negative reconnect threshold")
	}
	return nil
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Logger == nil {
		c.Logger = NoopLogger{}
	}
	if c.Params == nil {
		c.Params = StaticOpenConnectionParams(c.URL, c.Header)
	}
	if c.Backoff == nil {
		c.Backoff = CappedBackoff(ExponentialBackoffSeconds, defaultMaxBackoff)
	}
	if c.ReconnectThreshold == 0 {
		c.ReconnectThreshold = defaultReconnectThreshold
	}
	return c
}

// NewWebsocketClientFactory builds clients over websockets. The handler chain is, from the
// wire outwards: the websocket connection, ping answering, optional pinging and optional
// reconnection.
func NewWebsocketClientFactory(cfg ClientConfig) (ClientFactory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	logger := cfg.Logger.WithField("client", "websocket")

	factory := NewDirectConnectionHandlerFactory(
		logger,
		NewWebsocketFactory(
			logger,
			cfg.Dialer,
			NewOpenConnectionParamsRepo(logger, cfg.Params),
			cfg.ErrorAdapters,
		),
	)

	factory = NewPassiveKeepAliveConnectionHandlerFactory(factory, KeepAliveHandlerReplyPingWithPong)

	if cfg.PingInterval > 0 {
		factory = NewActiveKeepAliveConnectionHandlerFactory(
			logger,
			factory,
			cfg.PingInterval,
			NewKeepAliveMessageFactory(PingMessage, func() []byte { return nil }),
		)
	}

	if cfg.Reconnect {
		factory = NewBackoffConnectionHandlerFactory(logger, factory, cfg.Backoff, cfg.ReconnectThreshold)
	}

	return NewBasicClientFactory(factory, cfg.MessageHandler, cfg.EventHandler, cfg.EmitterOptions...), nil
}
