package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrScopeMismatch is returned when a write would put an entity of one
// restaurant into another restaurant's slot.
var ErrScopeMismatch = errors.New("entity belongs to another restaurant")

// Fetcher loads the authoritative collection of one restaurant.
type Fetcher[T Entity] func(ctx context.Context, restaurantID string) ([]T, error)

// Collection is the cache of one resource type.  Each restaurant has its
// own slot; slots are created on first use and never evicted, so memory is
// bounded by the number of restaurants the session touches.
type Collection[T Entity] struct {
	resource       Resource
	fetch          Fetcher[T]
	ttl            time.Duration
	refetchTimeout time.Duration
	now            func() time.Time
	log            *slog.Logger

	mu    sync.Mutex
	slots map[string]*slot[T]
}

type slot[T Entity] struct {
	present   bool
	entries   []Entry[T]
	fetchedAt time.Time
	stale     bool
	version   uint64
	refetch   *refetch
	holds     int // mutations in flight
}

type refetch struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Collection.
type Option func(*options)

type options struct {
	refetchTimeout time.Duration
	now            func() time.Time
	log            *slog.Logger
}

func WithRefetchTimeout(d time.Duration) Option { return func(o *options) { o.refetchTimeout = d } }
func WithClock(now func() time.Time) Option     { return func(o *options) { o.now = now } }
func WithLogger(l *slog.Logger) Option          { return func(o *options) { o.log = l } }

// New returns an empty collection.  ttl is the staleness window.
func New[T Entity](resource Resource, fetch Fetcher[T], ttl time.Duration, opts ...Option) *Collection[T] {
	o := options{refetchTimeout: 15 * time.Second, now: time.Now, log: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	return &Collection[T]{
		resource:       resource,
		fetch:          fetch,
		ttl:            ttl,
		refetchTimeout: o.refetchTimeout,
		now:            o.now,
		log:            o.log.With("resource", string(resource)),
		slots:          make(map[string]*slot[T]),
	}
}

func (c *Collection[T]) Resource() Resource { return c.resource }

func (c *Collection[T]) Key(restaurantID string) Key {
	return Key{RestaurantID: restaurantID, Resource: c.resource}
}

// slotLocked returns the slot of restaurantID, creating it.  c.mu must be held.
func (c *Collection[T]) slotLocked(restaurantID string) *slot[T] {
	s, ok := c.slots[restaurantID]
	if !ok {
		s = &slot[T]{}
		c.slots[restaurantID] = s
	}
	return s
}

// Read returns the cached collection.  An absent slot is fetched before
// returning.  A slot past its staleness window is returned as is and
// refetched in the background.
func (c *Collection[T]) Read(ctx context.Context, restaurantID string) ([]Entry[T], error) {
	c.mu.Lock()
	s := c.slotLocked(restaurantID)
	if s.present {
		out := clone(s.entries)
		if (s.stale || c.expiredLocked(s)) && s.refetch == nil && s.holds == 0 {
			c.startRefetchLocked(restaurantID, s)
		}
		c.mu.Unlock()
		return out, nil
	}
	version := s.version
	c.mu.Unlock()

	vals, err := c.fetch(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.Key(restaurantID), err)
	}
	entries := ConfirmedAll(vals)
	if err := c.checkScope(restaurantID, entries); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s.version != version {
		// a mutation or another read wrote while we were fetching; theirs is newer
		return clone(s.entries), nil
	}
	c.writeLocked(s, entries)
	return clone(entries), nil
}

// Peek returns the cached collection without fetching.
func (c *Collection[T]) Peek(restaurantID string) ([]Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[restaurantID]
	if !ok || !s.present {
		return nil, false
	}
	return clone(s.entries), true
}

// Write replaces the collection of restaurantID and marks it fresh.
func (c *Collection[T]) Write(restaurantID string, entries []Entry[T]) error {
	if err := c.checkScope(restaurantID, entries); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(c.slotLocked(restaurantID), clone(entries))
	return nil
}

func (c *Collection[T]) writeLocked(s *slot[T], entries []Entry[T]) {
	s.present = true
	s.entries = entries
	s.fetchedAt = c.now()
	s.stale = false
	s.version++
}

// Apply transforms the collection in place under the lock.  An absent slot
// is handed to fn as an empty collection.  The freshness of the slot is not
// changed.
func (c *Collection[T]) Apply(restaurantID string, fn func([]Entry[T]) []Entry[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(restaurantID)
	next := fn(clone(s.entries))
	if err := c.checkScope(restaurantID, next); err != nil {
		return err
	}
	s.present = true
	s.entries = next
	s.version++
	return nil
}

// Snapshot is a verbatim copy of one slot.
type Snapshot[T Entity] struct {
	restaurantID string
	present      bool
	entries      []Entry[T]
	fetchedAt    time.Time
	stale        bool
}

// Entries returns the snapshotted collection.
func (s Snapshot[T]) Entries() []Entry[T] { return clone(s.entries) }

func (c *Collection[T]) Snapshot(restaurantID string) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(restaurantID)
	return Snapshot[T]{
		restaurantID: restaurantID,
		present:      s.present,
		entries:      clone(s.entries),
		fetchedAt:    s.fetchedAt,
		stale:        s.stale,
	}
}

// Restore puts a slot back exactly as it was when snap was taken.
func (c *Collection[T]) Restore(snap Snapshot[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(snap.restaurantID)
	s.present = snap.present
	s.entries = clone(snap.entries)
	s.fetchedAt = snap.fetchedAt
	s.stale = snap.stale
	s.version++
}

// Invalidate marks the slot stale; the next Read refetches.
func (c *Collection[T]) Invalidate(restaurantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slotLocked(restaurantID).stale = true
}

// Hold keeps background refetches from starting or landing on the slot
// until the returned release is called.  Holds nest.
func (c *Collection[T]) Hold(restaurantID string) (release func()) {
	c.mu.Lock()
	s := c.slotLocked(restaurantID)
	s.holds++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			s.holds--
			c.mu.Unlock()
		})
	}
}

// CancelRefetch stops an in-flight background refetch.  Its result, should
// it still arrive, is discarded.
func (c *Collection[T]) CancelRefetch(restaurantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(restaurantID)
	if s.refetch != nil {
		s.refetch.cancel()
		s.refetch = nil
	}
}

// Revalidate marks the slot stale and starts a background refetch,
// superseding one already in flight.
func (c *Collection[T]) Revalidate(restaurantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(restaurantID)
	s.stale = true
	if s.refetch != nil {
		s.refetch.cancel()
		s.refetch = nil
	}
	c.startRefetchLocked(restaurantID, s)
}

// Settle waits until no background refetch is in flight for restaurantID.
func (c *Collection[T]) Settle(ctx context.Context, restaurantID string) error {
	for {
		c.mu.Lock()
		s := c.slotLocked(restaurantID)
		r := s.refetch
		c.mu.Unlock()
		if r == nil {
			return nil
		}
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Collection[T]) expiredLocked(s *slot[T]) bool {
	return c.ttl > 0 && c.now().Sub(s.fetchedAt) >= c.ttl
}

func (c *Collection[T]) startRefetchLocked(restaurantID string, s *slot[T]) {
	ctx, cancel := context.WithTimeout(context.Background(), c.refetchTimeout)
	r := &refetch{cancel: cancel, done: make(chan struct{})}
	s.refetch = r

	go func() {
		defer close(r.done)
		defer cancel()

		vals, err := c.fetch(ctx, restaurantID)
		entries := ConfirmedAll(vals)
		if err == nil {
			err = c.checkScope(restaurantID, entries)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if s.refetch != r {
			return // cancelled or superseded
		}
		s.refetch = nil
		if s.holds > 0 {
			return // a mutation owns the slot; it revalidates when done
		}
		if err != nil {
			c.log.Warn("background refetch failed", "restaurant_id", restaurantID, "error", err)
			return
		}
		c.writeLocked(s, entries)
	}()
}

func (c *Collection[T]) checkScope(restaurantID string, entries []Entry[T]) error {
	for _, e := range entries {
		if scope := e.Value.Scope(); scope != restaurantID {
			return fmt.Errorf("%w: %s %q is scoped to %q, not %q", ErrScopeMismatch, c.resource, e.Value.EntityID(), scope, restaurantID)
		}
	}
	return nil
}
