package notify

import (
	"sync"
	"time"
)

// Shown is one call captured by a Recorder.
type Shown struct {
	Message  string
	Severity Severity
	Duration time.Duration
}

// Recorder is a Sink that remembers every call.  Tests across the module
// use it to assert the exactly-one-notification rule.
type Recorder struct {
	mu    sync.Mutex
	calls []Shown
}

func (r *Recorder) Show(message string, severity Severity, opts ...Option) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Shown{Message: message, Severity: severity, Duration: durationOf(DefaultDuration, opts)})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Shown {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Shown(nil), r.calls...)
}

// Last returns the most recent call.
func (r *Recorder) Last() (Shown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Shown{}, false
	}
	return r.calls[len(r.calls)-1], true
}
