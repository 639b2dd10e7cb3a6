// Package logger provides the diagnostic sink used by the decoders and the CLI.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/gookit/color"
)

// Level is a log level.
type Level int

// Log levels.
const (
	Debug Level = iota + 1
	Info
	Warn
	Error
)

// Logger writes leveled log entries to a single destination.
type Logger struct {
	level   Level
	out     io.Writer
	doColor bool

	mutex sync.Mutex
	buf   bytes.Buffer
}

// New allocates a Logger. Entries below level are dropped; doColor enables
// ANSI-colored level tags.
func New(level Level, out io.Writer, doColor bool) *Logger {
	return &Logger{
		level:   level,
		out:     out,
		doColor: doColor,
	}
}

func writeLevel(buf *bytes.Buffer, level Level, doColor bool) {
	switch level {
	case Debug:
		if doColor {
			buf.WriteString(color.RenderString(color.Debug.Code(), "DEB"))
		} else {
			buf.WriteString("DEB")
		}

	case Info:
		if doColor {
			buf.WriteString(color.RenderString(color.Green.Code(), "INF"))
		} else {
			buf.WriteString("INF")
		}

	case Warn:
		if doColor {
			buf.WriteString(color.RenderString(color.Warn.Code(), "WAR"))
		} else {
			buf.WriteString("WAR")
		}

	case Error:
		if doColor {
			buf.WriteString(color.RenderString(color.Error.Code(), "ERR"))
		} else {
			buf.WriteString("ERR")
		}
	}
	buf.WriteByte(' ')
}

// Log writes a log entry.
func (lh *Logger) Log(level Level, format string, args ...interface{}) {
	if level < lh.level {
		return
	}

	lh.mutex.Lock()
	defer lh.mutex.Unlock()

	lh.buf.Reset()
	writeLevel(&lh.buf, level, lh.doColor)
	fmt.Fprintf(&lh.buf, format, args...)
	lh.buf.WriteByte('\n')
	lh.out.Write(lh.buf.Bytes())
}
