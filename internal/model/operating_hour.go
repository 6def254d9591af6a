package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weekdays lists the day names the backend accepts, in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// OperatingHour is the opening window for one day of the week.  Times
// are wall-clock strings in HH:MM:SS form.
type OperatingHour struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	DayOfWeek    string    `json:"day_of_week"`
	OpenTime     string    `json:"open_time"`
	CloseTime    string    `json:"close_time"`
	IsClosed     bool      `json:"is_closed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (h OperatingHour) EntityID() string { return h.ID }
func (h OperatingHour) Scope() string    { return h.RestaurantID }

// HourInput is one day in a bulk replace request.
type HourInput struct {
	DayOfWeek string `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

// ErrInvalidHours is wrapped by every HourInput validation failure.
var ErrInvalidHours = errors.New("invalid operating hours")

// Normalize canonicalises the day name and pads times to HH:MM:SS.
func (h HourInput) Normalize() (HourInput, error) {
	day, ok := canonicalDay(h.DayOfWeek)
	if !ok {
		return h, fmt.Errorf("%w: unknown day %q", ErrInvalidHours, h.DayOfWeek)
	}
	h.DayOfWeek = day
	open, err := clock(h.OpenTime)
	if err != nil {
		return h, err
	}
	closeAt, err := clock(h.CloseTime)
	if err != nil {
		return h, err
	}
	if !h.IsClosed && !closeAt.After(open) {
		return h, fmt.Errorf("%w: %s closes at %s before opening at %s", ErrInvalidHours, day, h.CloseTime, h.OpenTime)
	}
	h.OpenTime = open.Format("15:04:05")
	h.CloseTime = closeAt.Format("15:04:05")
	return h, nil
}

// NormalizeWeek validates a bulk request and rejects duplicate days.
func NormalizeWeek(in []HourInput) ([]HourInput, error) {
	seen := make(map[string]bool, len(in))
	out := make([]HourInput, 0, len(in))
	for _, h := range in {
		n, err := h.Normalize()
		if err != nil {
			return nil, err
		}
		if seen[n.DayOfWeek] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidHours, n.DayOfWeek)
		}
		seen[n.DayOfWeek] = true
		out = append(out, n)
	}
	return out, nil
}

// DayIndex returns the position of day in Weekdays or -1.
func DayIndex(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}

func canonicalDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Weekdays {
		if strings.EqualFold(d, s) || (len(s) == 3 && strings.EqualFold(d[:3], s)) {
			return d, true
		}
	}
	return "", false
}

func clock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q is not HH:MM[:SS]", ErrInvalidHours, s)
}
