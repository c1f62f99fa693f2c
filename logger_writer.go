package emitter

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const lineTimestampFormat = "2006-01-02 15:04:05"

// lineFormatter renders one entry per line: "[timestamp] LEVEL [k=v, ...]: message".
type lineFormatter struct{}

func (lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer

	level := strings.ToUpper(entry.Level.String())
	if entry.Level == logrus.WarnLevel {
		level = "WARN"
	}

	fmt.Fprintf(&buf, "[%s] %s", entry.Time.Format(lineTimestampFormat), level)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%s=%v", k, entry.Data[k])
		}
		buf.WriteString("]")
	}

	fmt.Fprintf(&buf, ": %s\n", strings.TrimRight(entry.Message, "\n"))

	return buf.Bytes(), nil
}

// NewWriterLogger creates a new logger that writes every level, one line per entry,
// to the provided writer. Loggers derived through WithField share the writer.
func NewWriterLogger(writer io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(writer)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(lineFormatter{})

	return NewLogrusLogger(l)
}
