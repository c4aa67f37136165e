package nbody

import (
	"fmt"
	"io"
	"strings"
)

// Logger accumulates run diagnostics and writes them to Output once
// the run finishes. Keeping the buffer out of the step loop avoids
// perturbing timing-sensitive runs with IO.
type Logger struct {
	Output io.Writer
	buff   strings.Builder
}

// Logf formats a message into the run log. Messages are printed when
// the run finishes.
func (log *Logger) Logf(format string, a ...interface{}) {
	log.buff.WriteString(fmt.Sprintf(format, a...))
}

// Flush writes the accumulated log to Output and resets the buffer.
func (log *Logger) Flush() {
	if log.Output == nil {
		return
	}
	io.WriteString(log.Output, log.buff.String())
	log.buff.Reset()
}

func newLogger(w io.Writer) *Logger {
	return &Logger{Output: w}
}
