package emitter

// RemovePolicy decides what Off and OffAny do with a listener that is not registered.
type RemovePolicy uint8

const (
	// RemoveNoop leaves the listeners untouched.
	RemoveNoop RemovePolicy = iota
	// RemoveFirstOnMiss removes the first listener instead, as if the missing one sat at index 0.
	RemoveFirstOnMiss
)

func (p RemovePolicy) String() string {
	switch p {
	case RemoveNoop:
		return "noop"
	case RemoveFirstOnMiss:
		return "first_on_miss"
	default:
		return "unknown"
	}
}

type (
	config struct {
		logger Logger
		policy RemovePolicy
	}

	// Option configures an EventEmitter.
	Option func(*config)
)

// WithLogger sets the logger registrations and removals are traced to.
func WithLogger(l Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRemovePolicy sets the policy applied when removing an unknown listener.
func WithRemovePolicy(p RemovePolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		logger: NoopLogger{},
		policy: RemoveNoop,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
