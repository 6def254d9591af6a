// Package mutation runs create, update and delete calls optimistically:
// the cache shows the intended result before the backend answers, and is
// rolled back verbatim when the backend refuses.
//
// A run goes through these steps, in order:
//
//  1. cancel the background refetch of the key
//  2. snapshot the cached collection
//  3. apply the optimistic change
//  4. call the backend
//  5. reconcile with the server object, or
//  6. restore the snapshot
//  7. revalidate the key in the background
//
// Exactly one notification is shown per run.  Runs on the same key are
// queued: a run starts only after the previous one on that key settled.
package mutation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/notify"
	"github.com/iliyamo/restaurant-dashboard/internal/telemetry"
)

// PlaceholderPrefix starts every locally generated id.
const PlaceholderPrefix = "temp-"

// Messages are the notification texts of one operation.  Failure is the
// fallback used when the error carries no better text.
type Messages struct {
	Success string
	Failure string
}

// State is the lifecycle of a single run.
type State int

const (
	Idle State = iota
	OptimisticApplied
	Reconciled
	RolledBack
	Revalidating
)

func (s State) String() string {
	switch s {
	case OptimisticApplied:
		return "optimistic-applied"
	case Reconciled:
		return "reconciled"
	case RolledBack:
		return "rolled-back"
	case Revalidating:
		return "revalidating"
	}
	return "idle"
}

// Executor runs mutations against one cache collection.
type Executor[T cache.Entity] struct {
	col      *cache.Collection[T]
	sink     notify.Sink
	reporter telemetry.Reporter
	log      *slog.Logger
	newID    func() string
	now      func() time.Time
	timeout  time.Duration
	queue    keyQueue
}

// Option configures an Executor.
type Option func(*settings)

type settings struct {
	reporter telemetry.Reporter
	log      *slog.Logger
	newID    func() string
	now      func() time.Time
	timeout  time.Duration
}

func WithReporter(r telemetry.Reporter) Option { return func(s *settings) { s.reporter = r } }
func WithLogger(l *slog.Logger) Option         { return func(s *settings) { s.log = l } }
func WithClock(now func() time.Time) Option    { return func(s *settings) { s.now = now } }

// WithIDs replaces the placeholder id generator.
func WithIDs(next func() string) Option { return func(s *settings) { s.newID = next } }

// WithTimeout bounds the backend call.  The caller's context does not
// cancel a call once issued; this timeout does.
func WithTimeout(d time.Duration) Option { return func(s *settings) { s.timeout = d } }

func NewExecutor[T cache.Entity](col *cache.Collection[T], sink notify.Sink, opts ...Option) *Executor[T] {
	s := settings{
		reporter: telemetry.Nop{},
		log:      slog.Default(),
		newID:    func() string { return PlaceholderPrefix + uuid.NewString() },
		now:      time.Now,
		timeout:  30 * time.Second,
	}
	for _, fn := range opts {
		fn(&s)
	}
	return &Executor[T]{
		col:      col,
		sink:     sink,
		reporter: s.reporter,
		log:      s.log.With("resource", string(col.Resource())),
		newID:    s.newID,
		now:      s.now,
		timeout:  s.timeout,
		queue:    keyQueue{slots: make(map[string]*keySlot)},
	}
}

// Collection returns the collection the executor writes to.
func (x *Executor[T]) Collection() *cache.Collection[T] { return x.col }

// plan is one run: how to change the cache before and after the call.
type plan[T cache.Entity] struct {
	method    string
	apply     func([]cache.Entry[T]) []cache.Entry[T]
	call      func(ctx context.Context) error
	reconcile func([]cache.Entry[T]) []cache.Entry[T]
	messages  Messages
}

func (x *Executor[T]) run(ctx context.Context, restaurantID string, p plan[T]) error {
	key := x.col.Key(restaurantID)
	log := x.log.With("key", key.String(), "method", p.method)

	unlock, err := x.queue.acquire(ctx, restaurantID)
	if err != nil {
		// never started; nothing to roll back or revalidate
		log.Debug("mutation abandoned while queued", "error", err)
		x.sink.Show(backend.Message(err, p.messages.Failure), notify.Error)
		return err
	}
	defer unlock()

	release := x.col.Hold(restaurantID)
	x.col.CancelRefetch(restaurantID)
	snap := x.col.Snapshot(restaurantID)

	err = x.col.Apply(restaurantID, p.apply)
	if err == nil {
		log.Debug("mutation state", "state", OptimisticApplied)
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), x.timeout)
		err = p.call(callCtx)
		cancel()
	}
	if err == nil {
		// the backend committed; a reply the cache refuses is logged and
		// left to the revalidation below
		if rerr := x.col.Apply(restaurantID, p.reconcile); rerr != nil {
			log.Warn("reconcile failed, waiting for revalidation", "error", rerr)
		}
		log.Debug("mutation state", "state", Reconciled)
	} else {
		x.col.Restore(snap)
		log.Debug("mutation state", "state", RolledBack, "error", err)
	}
	release()

	// the hold is released before the sink runs
	if err == nil {
		x.sink.Show(p.messages.Success, notify.Success)
	} else {
		x.sink.Show(backend.Message(err, p.messages.Failure), notify.Error)
		x.report(ctx, restaurantID, p.method, err)
	}

	log.Debug("mutation state", "state", Revalidating)
	x.col.Revalidate(restaurantID)
	return err
}

func (x *Executor[T]) report(ctx context.Context, restaurantID, method string, err error) {
	if !backend.ShouldReport(err) {
		return
	}
	x.reporter.Report(ctx, telemetry.Event{
		Kind:         backend.Classify(err).String(),
		Resource:     string(x.col.Resource()),
		Method:       method,
		Status:       backend.StatusOf(err),
		Message:      err.Error(),
		RestaurantID: restaurantID,
		OccurredAt:   x.now().UTC(),
	})
}

// Draft is handed to synthesizers to build a placeholder.
type Draft struct {
	LocalID      string
	RestaurantID string
	Now          time.Time
}

// Sub derives the draft of the i-th element of a bulk placeholder.
func (d Draft) Sub(i int) Draft {
	d.LocalID = fmt.Sprintf("%s-%d", d.LocalID, i)
	return d
}

func (x *Executor[T]) draft(restaurantID string) Draft {
	return Draft{LocalID: x.newID(), RestaurantID: restaurantID, Now: x.now().UTC()}
}
