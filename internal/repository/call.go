package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

const (
	DefaultCallLimit = 50
	MaxCallLimit     = 200
)

// CallRepo reads call history.  The backend omits restaurant_id on call
// records, so the repo stamps it from the request.
type CallRepo struct {
	t Transport
}

func NewCallRepo(t Transport) *CallRepo { return &CallRepo{t: t} }

// ClampLimit maps limit into 1..MaxCallLimit, 0 meaning the default.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultCallLimit
	case limit > MaxCallLimit:
		return MaxCallLimit
	}
	return limit
}

// List returns the most recent calls first.
func (r *CallRepo) List(ctx context.Context, restaurantID string, limit int) ([]model.Call, error) {
	q := url.Values{}
	q.Set("restaurant_id", restaurantID)
	q.Set("limit", strconv.Itoa(ClampLimit(limit)))
	var out struct {
		Data []model.Call `json:"data"`
	}
	if err := r.t.Do(ctx, "GET", "/calls?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	for i := range out.Data {
		stamp(&out.Data[i], restaurantID)
	}
	return out.Data, nil
}

// Get returns one call with its transcript.
func (r *CallRepo) Get(ctx context.Context, restaurantID, callID string) (model.Call, error) {
	q := url.Values{}
	q.Set("restaurant_id", restaurantID)
	var out model.Call
	if err := r.t.Do(ctx, "GET", path("calls", callID)+"?"+q.Encode(), nil, &out); err != nil {
		return out, fmt.Errorf("get call %s: %w", callID, notFound(err))
	}
	stamp(&out, restaurantID)
	return out, nil
}

func stamp(c *model.Call, restaurantID string) {
	if c.RestaurantID == "" {
		c.RestaurantID = restaurantID
	}
}
