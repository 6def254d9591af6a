// Package notify surfaces the outcome of user actions.  A notification is
// transient: it is shown, replaces whatever was visible before, and
// dismisses itself after a delay.  Nothing is queued or persisted.
package notify

import (
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	switch s {
	case Success, Error, Info, Warning:
		return true
	}
	return false
}

// DefaultDuration is how long a notification stays visible unless the
// caller overrides it.
const DefaultDuration = 5 * time.Second

// Sink displays a single transient message.  Implementations replace the
// visible message on every call.
type Sink interface {
	Show(message string, severity Severity, opts ...Option)
}

// Notification is the message currently visible on a sink.
type Notification struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	ShownAt   time.Time `json:"shown_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Option customises a single Show call.
type Option func(*showOptions)

type showOptions struct {
	duration time.Duration
}

// WithDuration overrides the auto-dismiss delay for one notification.
func WithDuration(d time.Duration) Option {
	return func(o *showOptions) { o.duration = d }
}

func durationOf(def time.Duration, opts []Option) time.Duration {
	o := showOptions{duration: def}
	for _, fn := range opts {
		fn(&o)
	}
	if o.duration <= 0 {
		return DefaultDuration
	}
	return o.duration
}

// Multi fans a notification out to several sinks, e.g. the in-process
// toast and the owner's Telegram chat.
type Multi []Sink

func (m Multi) Show(message string, severity Severity, opts ...Option) {
	for _, s := range m {
		if s != nil {
			s.Show(message, severity, opts...)
		}
	}
}

type stopper interface{ Stop() bool }

func afterFunc(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) }
