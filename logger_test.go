package emitter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormatterSortsFields(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "hello there",
		Data:    logrus.Fields{"zeta": 1, "alpha": "a"},
	}

	out, err := lineFormatter{}.Format(entry)

	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01 10:20:30] INFO [alpha=a, zeta=1]: hello there\n", string(out))
}

func TestWriterLoggerWritesEveryLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf).WithField("zeta", 1).WithField("alpha", "a")

	l.Debugf("hello %s", "there")
	l.Warn("careful")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] DEBUG \[alpha=a, zeta=1\]: hello there$`, lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "WARN [alpha=a, zeta=1]: careful"))
}

func TestWriterLoggerWithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWriterLogger(&buf)
	_ = parent.WithField("k", "v")

	parent.Errorln("boom")

	assert.Contains(t, buf.String(), "ERROR: boom\n")
	assert.NotContains(t, buf.String(), "k=v")
}

func TestLogrusLoggerCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	l := NewLogrusLogger(base).WithField("component", "test")
	l.Debugf("value is %d", 7)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "level=debug")
	assert.Contains(t, out, `msg="value is 7"`)
	assert.Contains(t, out, "component=test")
}

func TestEmitterTracesThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	e := NewEventEmitter[string, int](WithLogger(NewWriterLogger(&buf)))

	l := e.On("login", func(int) {})
	e.Off("login", l)

	out := buf.String()
	assert.Contains(t, out, "component=event_emitter")
	assert.Contains(t, out, "listener added to login (1 registered)")
	assert.Contains(t, out, "listeners removed from login (0 registered)")
}
