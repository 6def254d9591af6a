package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the subset of *tgbotapi.BotAPI the Telegram sink uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Telegram mirrors notifications into the owner's chat.  The chat shows at
// most one notification message: a new notification edits the previous
// message in place, and the message is deleted when it expires.
//
// Show only queues the notification.  A single worker owns the chat state
// and makes the Telegram round trips, so a slow API never holds up the
// caller.  When the queue is full the notification is dropped.
type Telegram struct {
	api      BotAPI
	chatID   int64
	duration time.Duration
	log      *slog.Logger
	after    func(time.Duration, func()) stopper

	jobs    chan tgJob
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	// owned by the worker
	seq       uint64
	messageID int
	timer     stopper
}

// tgJob is one unit of worker work: show a text, expire the message of
// show seq, or signal flushed once everything before it ran.
type tgJob struct {
	text    string
	d       time.Duration
	expire  uint64
	flushed chan struct{}
}

// telegramQueue bounds the notifications waiting for the worker.
const telegramQueue = 32

func NewTelegram(api BotAPI, chatID int64, d time.Duration, logger *slog.Logger) *Telegram {
	if d <= 0 {
		d = DefaultDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &Telegram{
		api:      api,
		chatID:   chatID,
		duration: d,
		log:      logger,
		after:    afterFunc,
		jobs:     make(chan tgJob, telegramQueue),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Telegram) Show(message string, severity Severity, opts ...Option) {
	t.enqueue(tgJob{text: fmt.Sprintf("%s %s", label(severity), message), d: durationOf(t.duration, opts)})
}

func (t *Telegram) enqueue(j tgJob) {
	select {
	case <-t.done:
	case t.jobs <- j:
	default:
		t.log.Warn("telegram notification dropped, queue full", "chat_id", t.chatID)
	}
}

// Flush waits until every notification queued before it was handled.
func (t *Telegram) Flush() {
	ch := make(chan struct{})
	select {
	case t.jobs <- tgJob{flushed: ch}:
	case <-t.done:
		return
	}
	select {
	case <-ch:
	case <-t.stopped:
	}
}

// Close stops the worker after it handled what is already queued.  Later
// notifications are discarded.
func (t *Telegram) Close() {
	t.once.Do(func() { close(t.done) })
	<-t.stopped
}

func (t *Telegram) run() {
	defer close(t.stopped)
	for {
		select {
		case j := <-t.jobs:
			t.handle(j)
		case <-t.done:
			for {
				select {
				case j := <-t.jobs:
					t.handle(j)
				default:
					if t.timer != nil {
						t.timer.Stop()
					}
					return
				}
			}
		}
	}
}

func (t *Telegram) handle(j tgJob) {
	switch {
	case j.flushed != nil:
		close(j.flushed)
	case j.expire != 0:
		t.expire(j.expire)
	default:
		t.show(j.text, j.d)
	}
}

func (t *Telegram) show(text string, d time.Duration) {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	id := t.seq
	if !t.upsert(text) {
		return
	}
	t.timer = t.after(d, func() { t.enqueue(tgJob{expire: id}) })
}

// upsert edits the visible message or sends a new one.  It reports whether
// a message is visible afterwards.
func (t *Telegram) upsert(text string) bool {
	if t.messageID != 0 {
		_, err := t.api.Send(tgbotapi.NewEditMessageText(t.chatID, t.messageID, text))
		if err == nil {
			return true
		}
		msg := err.Error()
		if strings.Contains(msg, "not modified") {
			return true
		}
		if !strings.Contains(msg, "not found") {
			t.log.Warn("telegram notification edit failed", "chat_id", t.chatID, "message_id", t.messageID, "error", err)
			return true
		}
		// the message was deleted from the chat; send a fresh one
		t.messageID = 0
	}
	sent, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text))
	if err != nil {
		t.log.Warn("telegram notification send failed", "chat_id", t.chatID, "error", err)
		return false
	}
	t.messageID = sent.MessageID
	return true
}

func (t *Telegram) expire(id uint64) {
	if t.seq != id || t.messageID == 0 {
		return
	}
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(t.chatID, t.messageID)); err != nil {
		t.log.Warn("telegram notification delete failed", "chat_id", t.chatID, "message_id", t.messageID, "error", err)
	}
	t.messageID = 0
	t.timer = nil
}

func label(s Severity) string {
	switch s {
	case Success:
		return "✅"
	case Error:
		return "❌"
	case Warning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}
