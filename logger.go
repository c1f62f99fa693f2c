package emitter

// Logger is the leveled, field-aware logger used across the package.
// It mirrors the method set of logrus, see NewLogrusLogger.
type Logger interface {
	WithField(key string, value any) Logger
	Debug(args ...any)
	Debugf(format string, args ...any)
	Debugln(args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Infoln(args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Warnln(args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Errorln(args ...any)
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (n NoopLogger) WithField(string, any) Logger { return n }
func (NoopLogger) Debug(...any)                    {}
func (NoopLogger) Debugf(string, ...any)           {}
func (NoopLogger) Debugln(...any)                  {}
func (NoopLogger) Info(...any)                     {}
func (NoopLogger) Infof(string, ...any)            {}
func (NoopLogger) Infoln(...any)                   {}
func (NoopLogger) Warn(...any)                     {}
func (NoopLogger) Warnf(string, ...any)            {}
func (NoopLogger) Warnln(...any)                   {}
func (NoopLogger) Error(...any)                    {}
func (NoopLogger) Errorf(string, ...any)           {}
func (NoopLogger) Errorln(...any)                  {}
