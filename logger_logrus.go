package emitter

import (
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	logrus.FieldLogger
}

// NewLogrusLogger adapts a logrus logger or entry to Logger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLogger{FieldLogger: l}
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{FieldLogger: l.FieldLogger.WithField(key, value)}
}
