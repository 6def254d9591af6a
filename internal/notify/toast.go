package notify

import (
	"sync"
	"time"
)

// Toast holds the one notification the view surface renders.  It is safe
// for concurrent use.
type Toast struct {
	duration time.Duration
	now      func() time.Time
	after    func(time.Duration, func()) stopper

	mu      sync.Mutex
	seq     uint64
	current *Notification
	timer   stopper
}

// NewToast returns a toast dismissing messages after d (DefaultDuration
// when d is zero).
func NewToast(d time.Duration) *Toast {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Toast{duration: d, now: time.Now, after: afterFunc}
}

// Show replaces the visible notification and restarts the dismiss timer.
func (t *Toast) Show(message string, severity Severity, opts ...Option) {
	d := durationOf(t.duration, opts)
	if !severity.Valid() {
		severity = Info
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	now := t.now()
	n := Notification{
		ID:        t.seq,
		Message:   message,
		Severity:  severity,
		ShownAt:   now,
		ExpiresAt: now.Add(d),
	}
	t.current = &n
	id := n.ID
	t.timer = t.after(d, func() { t.expire(id) })
}

// Current returns the visible notification, if any.
func (t *Toast) Current() (Notification, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Notification{}, false
	}
	return *t.current, true
}

// Dismiss hides the visible notification immediately.
func (t *Toast) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.current = nil
}

// expire only clears the notification it was scheduled for; a timer that
// fires after being replaced is a no-op.
func (t *Toast) expire(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil && t.current.ID == id {
		t.current = nil
		t.timer = nil
	}
}
