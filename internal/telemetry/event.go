// Package telemetry forwards server and network failures seen by the
// console to a message broker, and archives them on the consuming side.
package telemetry

import (
	"context"
	"time"
)

// Event describes one failed backend interaction.  It carries enough
// context (resource, method, status) to group failures without a look at
// the console logs.
type Event struct {
	Kind         string    `json:"kind"` // network | server
	Resource     string    `json:"resource"`
	Method       string    `json:"method"`
	Status       int       `json:"status,omitempty"` // 0 when no reply was received
	Message      string    `json:"message"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Reporter accepts events.  Implementations must not block the caller on
// broker I/O and never return delivery failures.
type Reporter interface {
	Report(ctx context.Context, ev Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Report(context.Context, Event) {}
