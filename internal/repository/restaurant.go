package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
)

// RestaurantRepo reads and updates the restaurant of the signed-in user.
type RestaurantRepo struct {
	t Transport
}

func NewRestaurantRepo(t Transport) *RestaurantRepo { return &RestaurantRepo{t: t} }

// Mine returns the restaurant linked to the session.  A 403 or 404 yields
// ErrNoRestaurant.
func (r *RestaurantRepo) Mine(ctx context.Context) (model.Restaurant, error) {
	var out model.Restaurant
	err := r.t.Do(ctx, "GET", path("restaurants", "me"), nil, &out)
	switch k := backend.Classify(err); {
	case err == nil:
		return out, nil
	case k == backend.KindForbidden || k == backend.KindNotFound:
		return out, fmt.Errorf("%w: %w", ErrNoRestaurant, err)
	default:
		return out, fmt.Errorf("get my restaurant: %w", err)
	}
}

func (r *RestaurantRepo) Get(ctx context.Context, restaurantID string) (model.Restaurant, error) {
	var out model.Restaurant
	if err := r.t.Do(ctx, "GET", path("restaurants", restaurantID), nil, &out); err != nil {
		return out, fmt.Errorf("get restaurant %s: %w", restaurantID, notFound(err))
	}
	return out, nil
}

func (r *RestaurantRepo) Update(ctx context.Context, restaurantID string, in model.RestaurantPatch) (model.Restaurant, error) {
	if in.Name != nil && *in.Name == "" {
		return model.Restaurant{}, errors.New("restaurant name must not be empty")
	}
	var out model.Restaurant
	if err := r.t.Do(ctx, "PUT", path("restaurants", restaurantID), in, &out); err != nil {
		return out, fmt.Errorf("update restaurant %s: %w", restaurantID, notFound(err))
	}
	return out, nil
}

func (r *RestaurantRepo) Stats(ctx context.Context, restaurantID string) (model.RestaurantStats, error) {
	var out model.RestaurantStats
	if err := r.t.Do(ctx, "GET", path("restaurants", restaurantID, "stats"), nil, &out); err != nil {
		return out, fmt.Errorf("get stats of %s: %w", restaurantID, notFound(err))
	}
	return out, nil
}
