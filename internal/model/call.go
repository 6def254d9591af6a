package model

import "time"

// Call is one voice-assistant phone call.  Messages carry the filtered
// transcript (user and assistant turns only).
type Call struct {
	ID              string        `json:"id"`
	RestaurantID    string        `json:"restaurant_id"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	DurationSeconds *int          `json:"duration_seconds,omitempty"`
	Caller          *string       `json:"caller,omitempty"`
	Outcome         *string       `json:"outcome,omitempty"`
	Messages        []CallMessage `json:"messages,omitempty"`
	Cost            *float64      `json:"cost,omitempty"`
}

func (c Call) EntityID() string { return c.ID }
func (c Call) Scope() string    { return c.RestaurantID }

// CallMessage is a single transcript turn.
type CallMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
