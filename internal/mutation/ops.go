package mutation

import (
	"context"
	"net/http"

	"github.com/iliyamo/restaurant-dashboard/internal/cache"
)

// Create appends a placeholder synthesized from the input, then swaps it
// for the server object.
type Create[T cache.Entity, V any] struct {
	Call       func(ctx context.Context, restaurantID string, in V) (T, error)
	Synthesize func(d Draft, in V) T
	Messages   Messages
}

func (op Create[T, V]) Run(ctx context.Context, x *Executor[T], restaurantID string, in V) (T, error) {
	d := x.draft(restaurantID)
	var out T
	err := x.run(ctx, restaurantID, plan[T]{
		method: http.MethodPost,
		apply: func(es []cache.Entry[T]) []cache.Entry[T] {
			return append(es, cache.Placeholder(d.LocalID, op.Synthesize(d, in)))
		},
		call: func(ctx context.Context) error {
			v, err := op.Call(ctx, restaurantID, in)
			out = v
			return err
		},
		reconcile: func(es []cache.Entry[T]) []cache.Entry[T] {
			return swapPlaceholder(es, d.LocalID, out)
		},
		messages: op.Messages,
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// swapPlaceholder replaces the placeholder created under localID by v.
// When the placeholder is gone, v replaces an entry with its id or is
// appended.
func swapPlaceholder[T cache.Entity](es []cache.Entry[T], localID string, v T) []cache.Entry[T] {
	out := make([]cache.Entry[T], 0, len(es)+1)
	placed := false
	for _, e := range es {
		switch {
		case e.Pending() && e.LocalID == localID:
			if !placed {
				out = append(out, cache.Confirmed(v))
				placed = true
			}
		case e.Value.EntityID() == v.EntityID():
			if !placed {
				out = append(out, cache.Confirmed(v))
				placed = true
			}
		default:
			out = append(out, e)
		}
	}
	if !placed {
		out = append(out, cache.Confirmed(v))
	}
	return out
}

// Update merges the input into the cached entity with the given id, then
// replaces it with the server object.  An id absent from the cache gets no
// optimistic change.
type Update[T cache.Entity, V any] struct {
	Call     func(ctx context.Context, restaurantID, id string, in V) (T, error)
	Merge    func(current T, in V) T
	Messages Messages
}

func (op Update[T, V]) Run(ctx context.Context, x *Executor[T], restaurantID, id string, in V) (T, error) {
	var out T
	err := x.run(ctx, restaurantID, plan[T]{
		method: http.MethodPut,
		apply: func(es []cache.Entry[T]) []cache.Entry[T] {
			for i := range es {
				if es[i].Value.EntityID() == id {
					es[i].Value = op.Merge(es[i].Value, in)
				}
			}
			return es
		},
		call: func(ctx context.Context) error {
			v, err := op.Call(ctx, restaurantID, id, in)
			out = v
			return err
		},
		reconcile: func(es []cache.Entry[T]) []cache.Entry[T] {
			for i := range es {
				if es[i].Value.EntityID() == id {
					es[i] = cache.Confirmed(out)
				}
			}
			return es
		},
		messages: op.Messages,
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete filters the entity out.  Deleting an id that is not cached is a
// no-op on the cache; the backend call is still made.
type Delete[T cache.Entity] struct {
	Call     func(ctx context.Context, restaurantID, id string) error
	Messages Messages
}

func (op Delete[T]) Run(ctx context.Context, x *Executor[T], restaurantID, id string) error {
	without := func(es []cache.Entry[T]) []cache.Entry[T] {
		out := es[:0]
		for _, e := range es {
			if e.Value.EntityID() != id {
				out = append(out, e)
			}
		}
		return out
	}
	return x.run(ctx, restaurantID, plan[T]{
		method:    http.MethodDelete,
		apply:     without,
		call:      func(ctx context.Context) error { return op.Call(ctx, restaurantID, id) },
		reconcile: without,
		messages:  op.Messages,
	})
}

// Replace swaps the whole collection for placeholders built from the
// input, then for the server's reply.  Used by bulk endpoints such as
// operating hours.
type Replace[T cache.Entity, V any] struct {
	Call       func(ctx context.Context, restaurantID string, in V) ([]T, error)
	Synthesize func(d Draft, in V) []T
	Messages   Messages
}

func (op Replace[T, V]) Run(ctx context.Context, x *Executor[T], restaurantID string, in V) ([]T, error) {
	d := x.draft(restaurantID)
	var out []T
	err := x.run(ctx, restaurantID, plan[T]{
		method: http.MethodPut,
		apply: func([]cache.Entry[T]) []cache.Entry[T] {
			vs := op.Synthesize(d, in)
			es := make([]cache.Entry[T], len(vs))
			for i, v := range vs {
				es[i] = cache.Placeholder(d.Sub(i).LocalID, v)
			}
			return es
		},
		call: func(ctx context.Context) error {
			vs, err := op.Call(ctx, restaurantID, in)
			out = vs
			return err
		},
		reconcile: func([]cache.Entry[T]) []cache.Entry[T] {
			return cache.ConfirmedAll(out)
		},
		messages: op.Messages,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
