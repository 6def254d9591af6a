// Package cache mirrors server collections in memory.  A Collection holds
// one resource type (categories, zones, ...) partitioned by restaurant, so
// one slot never mixes entities from two restaurants.
package cache

import "fmt"

// Entity is a server-owned record scoped to one restaurant.
type Entity interface {
	EntityID() string
	Scope() string
}

// Resource names a collection.  The values double as the backend path
// segment.
type Resource string

const (
	Categories Resource = "categories"
	MenuItems  Resource = "menu-items"
	Modifiers  Resource = "modifiers"
	Zones      Resource = "zones"
	Hours      Resource = "hours"
	Calls      Resource = "calls"
)

// Key addresses one slot: a resource for one restaurant.
type Key struct {
	RestaurantID string
	Resource     Resource
}

func (k Key) String() string { return fmt.Sprintf("%s:%s", k.Resource, k.RestaurantID) }

// State tags an entry as confirmed by the server or synthesized locally.
type State uint8

const (
	StateConfirmed State = iota
	StatePlaceholder
)

func (s State) String() string {
	if s == StatePlaceholder {
		return "placeholder"
	}
	return "confirmed"
}

// Entry is a cached entity plus its confirmation state.  Placeholders carry
// the local id they were created under; reconciliation matches on it.
type Entry[T Entity] struct {
	Value   T
	State   State
	LocalID string
}

func Confirmed[T Entity](v T) Entry[T] { return Entry[T]{Value: v, State: StateConfirmed} }

func Placeholder[T Entity](localID string, v T) Entry[T] {
	return Entry[T]{Value: v, State: StatePlaceholder, LocalID: localID}
}

// Pending reports whether the entry awaits server confirmation.
func (e Entry[T]) Pending() bool { return e.State == StatePlaceholder }

// ConfirmedAll wraps server records.
func ConfirmedAll[T Entity](vs []T) []Entry[T] {
	out := make([]Entry[T], len(vs))
	for i, v := range vs {
		out[i] = Confirmed(v)
	}
	return out
}

// Values strips the tags.
func Values[T Entity](es []Entry[T]) []T {
	out := make([]T, len(es))
	for i, e := range es {
		out[i] = e.Value
	}
	return out
}

func clone[T Entity](es []Entry[T]) []Entry[T] {
	if es == nil {
		return nil
	}
	return append(make([]Entry[T], 0, len(es)), es...)
}
