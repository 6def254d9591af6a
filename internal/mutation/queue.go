package mutation

import (
	"context"
	"sync"
)

// keyQueue serializes runs per restaurant.  Waiters are admitted in
// arrival order.  The caller's context only matters while waiting.
type keyQueue struct {
	mu    sync.Mutex
	slots map[string]*keySlot
}

type keySlot struct {
	turn chan struct{} // capacity 1; holding a token means running
	refs int
}

func (q *keyQueue) acquire(ctx context.Context, key string) (func(), error) {
	q.mu.Lock()
	s, ok := q.slots[key]
	if !ok {
		s = &keySlot{turn: make(chan struct{}, 1)}
		q.slots[key] = s
	}
	s.refs++
	q.mu.Unlock()

	select {
	case s.turn <- struct{}{}:
	default:
		select {
		case s.turn <- struct{}{}:
		case <-ctx.Done():
			q.put(key, s)
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.turn
			q.put(key, s)
		})
	}, nil
}

func (q *keyQueue) put(key string, s *keySlot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(q.slots, key)
	}
}
