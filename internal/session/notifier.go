package session

import (
	"fmt"
	"io"
)

// Level is the severity of a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Notifier receives short messages for the user. Calls are fire and forget.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// NopNotifier drops every message.
type NopNotifier struct{}

func (NopNotifier) Notify(Level, string) {}

// WriterNotifier prints messages to W, one per line. Successes are skipped
// when Quiet is set.
type WriterNotifier struct {
	W     io.Writer
	Quiet bool
}

func (n *WriterNotifier) Notify(level Level, message string) {
	if n.Quiet && level == LevelSuccess {
		return
	}
	switch level {
	case LevelWarning:
		_, _ = fmt.Fprintf(n.W, "warning: %s\n", message)
	case LevelError:
		_, _ = fmt.Fprintf(n.W, "error: %s\n", message)
	default:
		_, _ = fmt.Fprintln(n.W, message)
	}
}
